// Package process builds box trees for documents on behalf of the command
// line tools.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"boxtree/pkg/boxes"
	"boxtree/pkg/css"
	"boxtree/pkg/html"
	"boxtree/pkg/js"
	"boxtree/pkg/state"
)

// MarginTable is the margin area of one page side.
type MarginTable struct {
	Page  int
	Side  boxes.PageSide
	Table *boxes.BlockBox
}

// Result holds everything built for one document.
type Result struct {
	Root    *boxes.BlockBox
	Margins []MarginTable
	// names of the running elements the document declares
	Running []string
}

var sides = []boxes.PageSide{boxes.SideTop, boxes.SideRight, boxes.SideBottom, boxes.SideLeft}

// LoadDocument reads and parses an HTML file.
func LoadDocument(path string) (*html.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open source: %w", err)
	}
	defer f.Close()

	doc, err := html.ParseReader(f, "")
	if err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	return doc, nil
}

// Build runs the document scripts when enabled, cascades the stylesheets
// and builds the box tree of doc together with the margin tables of every
// configured page. Stylesheet and script problems are logged, only
// cancellation and script interruption stop processing.
func Build(ctx context.Context, env *state.LocalEnv, doc *html.Document) (*Result, error) {
	cfg := env.Cfg
	opts := []boxes.Option{boxes.WithLogger(env.Log)}

	if cfg.Document.Scripts.Enable {
		engine, err := runScripts(ctx, env, doc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, boxes.WithFunctions(engine))
	}

	cascade, err := css.NewCascade(doc.Stylesheets,
		css.WithMedium(cfg.Document.Medium),
		css.WithCascadeLogger(env.Log.Named("css")))
	if err != nil {
		env.Log.Warn("Stylesheet problems", zap.Error(err))
	}

	builder := boxes.NewBuilder(cascade, opts...)
	root, err := builder.BuildRoot(ctx, doc.DocumentElement())
	if err != nil {
		return nil, err
	}
	res := &Result{Root: root, Running: builder.Running().Names()}

	for page := 1; page <= cfg.Page.Count; page++ {
		info := cascade.PageInfo(page)
		for _, side := range sides {
			names, dir := boxes.MarginBoxNames(side)
			table, err := builder.BuildMarginTable(ctx, boxes.MarginArea{
				Page:      info,
				Number:    page,
				Names:     names,
				Height:    cfg.Page.MarginHeight(string(side)),
				Direction: dir,
			})
			if err != nil {
				return nil, err
			}
			if table == nil {
				continue
			}
			err = boxes.ResolveDynamic(table, boxes.EvalContext{
				Root:      doc.DocumentElement(),
				Page:      page,
				PageCount: cfg.Page.Count,
			})
			if err != nil {
				env.Log.Debug("Margin content left unresolved", zap.Int("page", page), zap.String("side", string(side)), zap.Error(err))
			}
			res.Margins = append(res.Margins, MarginTable{Page: page, Side: side, Table: table})
		}
	}

	if err := check(res); err != nil {
		env.Log.Warn("Box tree is inconsistent", zap.Error(err))
	}
	return res, nil
}

func runScripts(ctx context.Context, env *state.LocalEnv, doc *html.Document) (*js.Engine, error) {
	for _, fname := range env.Cfg.Document.Scripts.Files {
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, fmt.Errorf("unable to read script: %w", err)
		}
		doc.Scripts = append(doc.Scripts, string(data))
	}

	engine := js.New(js.WithLogger(env.Log))
	if err := engine.Execute(ctx, doc); err != nil {
		if errors.Is(err, js.ErrInterrupted) {
			return nil, err
		}
		env.Log.Warn("Script errors", zap.Error(err))
	}
	return engine, nil
}

func check(res *Result) error {
	err := boxes.Check(res.Root)
	for _, m := range res.Margins {
		if e := boxes.Check(m.Table); e != nil {
			err = multierr.Append(err, fmt.Errorf("page %d %s margin: %w", m.Page, m.Side, e))
		}
	}
	return err
}
