package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"boxtree/pkg/config"
	"boxtree/pkg/process"
	"boxtree/pkg/render"
	"boxtree/pkg/state"
)

const outlineWidth = 700

func main() {
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	var cfgFile string
	if len(os.Args) > 1 {
		cfgFile = os.Args[1]
	}
	cfg, err := config.LoadConfiguration(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to prepare configuration: %v\n", err)
		os.Exit(1)
	}
	env.Cfg = cfg
	env.Log = cfg.Logging.Prepare("boxview")
	defer env.RestoreStdLog()

	a := app.New()
	w := a.NewWindow("box tree")
	w.Resize(fyne.NewSize(1200, 800))

	idx := process.NewIndex(&process.Result{})
	tree := widget.NewTree(
		func(id widget.TreeNodeID) []widget.TreeNodeID { return idx.Children(id) },
		func(id widget.TreeNodeID) bool { return id == "" || idx.IsBranch(id) },
		func(bool) fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TreeNodeID, _ bool, o fyne.CanvasObject) { o.(*widget.Label).SetText(idx.Label(id)) },
	)

	outline := canvas.NewImageFromImage(nil)
	outline.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter the path of an HTML file and press Enter")

	source := widget.NewEntry()
	source.SetPlaceHolder("document.html")
	source.OnSubmitted = func(src string) {
		status.SetText("Loading " + src + "...")
		go func() {
			doc, err := process.LoadDocument(src)
			if err != nil {
				fyne.Do(func() { status.SetText("Error: " + err.Error()) })
				return
			}
			res, err := process.Build(ctx, env, doc)
			if err != nil {
				fyne.Do(func() { status.SetText("Error: " + err.Error()) })
				return
			}
			r := render.NewRenderer(outlineWidth, res.Root)
			r.Render()

			fyne.Do(func() {
				idx = process.NewIndex(res)
				tree.Refresh()
				tree.OpenBranch("root")
				outline.Image = r.Image()
				outline.Refresh()
				status.SetText(fmt.Sprintf("%s: %d margin tables", src, len(res.Margins)))
				w.SetTitle("box tree - " + src)
			})
		}()
	}

	split := container.NewHSplit(tree, container.NewScroll(outline))
	split.Offset = 0.4
	content := container.NewBorder(source, status, nil, nil, split)
	w.SetContent(content)

	// keep focus on the entry so Tab has somewhere to go
	w.Canvas().Focus(source)

	w.ShowAndRun()
}
