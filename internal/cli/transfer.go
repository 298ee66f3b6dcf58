package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/smallwins/internal/config"
	"github.com/julianstephens/smallwins/internal/sample"
)

type ExportCmd struct {
	Dir string `help:"Directory to write the export to (default: export_dir or the working directory)."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}

	dir := c.Dir
	if dir == "" {
		dir, err = ctx.Config.ResolvedExportDir()
	} else {
		dir, err = config.ExpandPath(dir)
	}
	if err != nil {
		return err
	}

	path, err := ctrl.Export(dir)
	if err != nil {
		return err
	}
	ctx.println(success("Exported habits to: " + path))
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Exported JSON file to import." type:"existingfile"`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}

	current := ctrl.Collection()
	if len(current) > 0 {
		ok, err := ctx.confirm(c.Yes,
			"Replace all habits?",
			fmt.Sprintf("Importing replaces your %d habits. A backup is taken first.", len(current)))
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Import cancelled.")
			return nil
		}
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	coll, err := ctrl.Import(ctx.Ctx(), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	ctx.println(success(fmt.Sprintf("Imported %d habits with %d entries", len(coll), coll.LogCount())))
	return nil
}

type SampleCmd struct {
	Seed uint64 `help:"Random seed; 0 picks one from the clock."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *SampleCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}

	if current := ctrl.Collection(); len(current) > 0 {
		ok, err := ctx.confirm(c.Yes,
			"Replace all habits with sample data?",
			fmt.Sprintf("This replaces your %d habits with %d generated entries. A backup is taken first.", len(current), sample.LogCount()))
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Sample load cancelled.")
			return nil
		}
	}

	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	coll, err := ctrl.LoadSample(ctx.Ctx(), seed)
	if err != nil {
		return err
	}
	ctx.println(success(fmt.Sprintf("Loaded %d sample habits with %d entries (seed %d)", len(coll), coll.LogCount(), seed)))
	return nil
}
