package cli

import (
	"github.com/julianstephens/smallwins/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}

	coll := ctrl.Collection()
	ctx.printf("Validating %d habits...\n\n", len(coll))
	result := validation.Collection(coll)
	ctx.println(result.FormatReport())

	// Issues are reported, not returned
	return nil
}
