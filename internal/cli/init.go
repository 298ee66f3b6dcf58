package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/julianstephens/smallwins/internal/config"
	"github.com/julianstephens/smallwins/internal/logger"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	store, err := ctx.Provider()
	if err != nil {
		return err
	}
	if err := store.Init(ctx.Ctx()); err != nil {
		return err
	}

	if ctx.ConfigPath != "" {
		path, err := config.ExpandPath(ctx.ConfigPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.Save(path, ctx.Config); err != nil {
				return err
			}
			ctx.printf("Wrote default config to: %s\n", path)
		}
	}

	logger.Info("Initialized storage", "backend", ctx.Config.Storage, "path", store.GetConfigPath())
	ctx.println(success("Initialized smallwins storage at: " + store.GetConfigPath()))
	return nil
}
