package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"boxtree/pkg/boxes"
	"boxtree/pkg/render"
	"boxtree/pkg/state"
)

// Output formats of the dump command.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

type marginOutline struct {
	Page  int            `yaml:"page"`
	Side  string         `yaml:"side"`
	Table *boxes.Outline `yaml:"table"`
}

type outlineDoc struct {
	Root    *boxes.Outline  `yaml:"root"`
	Margins []marginOutline `yaml:"margins,omitempty"`
	Running []string        `yaml:"running,omitempty,flow"`
}

// Write prints res to w in the requested format.
func Write(w io.Writer, res *Result, format string) error {
	switch format {
	case FormatYAML:
		doc := outlineDoc{Root: boxes.NewOutline(res.Root), Running: res.Running}
		for _, m := range res.Margins {
			doc.Margins = append(doc.Margins, marginOutline{Page: m.Page, Side: string(m.Side), Table: boxes.NewOutline(m.Table)})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("unable to encode box tree: %w", err)
		}
		return enc.Close()
	case FormatText:
		var sb strings.Builder
		sb.WriteString(boxes.Dump(res.Root))
		for _, m := range res.Margins {
			fmt.Fprintf(&sb, "\npage %d %s margin\n", m.Page, m.Side)
			sb.WriteString(boxes.Dump(m.Table))
		}
		if len(res.Running) > 0 {
			fmt.Fprintf(&sb, "\nrunning: %s\n", strings.Join(res.Running, ", "))
		}
		_, err := io.WriteString(w, sb.String())
		return err
	}
	return fmt.Errorf("unknown output format '%s'", format)
}

// Run is the action of the dump command.
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no source file specified")
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	doc, err := LoadDocument(src)
	if err != nil {
		return err
	}
	res, err := Build(ctx, env, doc)
	if err != nil {
		return fmt.Errorf("unable to build boxes for '%s': %w", src, err)
	}

	out := os.Stdout
	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if out, err = os.Create(dst); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
		}
		defer out.Close()
	}
	if err := Write(out, res, cmd.String("format")); err != nil {
		return err
	}

	if png := cmd.String("png"); len(png) > 0 {
		r := render.NewRenderer(int(cmd.Int("width")), res.Root)
		r.Render()
		if err := r.SavePNG(png); err != nil {
			return fmt.Errorf("unable to save outline image: %w", err)
		}
		env.Log.Info("Box outline saved", zap.String("file", png))
	}

	env.Log.Debug("Boxes built", zap.String("source", src), zap.Int("margin tables", len(res.Margins)), zap.Duration("elapsed", env.Uptime()))
	return nil
}
