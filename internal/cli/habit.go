package cli

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/smallwins/internal/habits"
)

const displayTimeFormat = "2006-01-02 15:04"

type AddCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *AddCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}
	if _, exists := ctrl.Collection().FindByName(c.Name); exists {
		ctx.println(warnStyle.Render(fmt.Sprintf("Note: a habit named %q already exists; refer to it by id.", c.Name)))
	}

	coll, err := ctrl.Dispatch(ctx.Ctx(), habits.AddHabit{Name: c.Name})
	if err != nil {
		return err
	}
	added := coll[len(coll)-1]
	ctx.println(success(fmt.Sprintf("Added habit: %s (%s)", added.Name, added.ID)))
	return nil
}

type ListCmd struct {
	Archived bool `help:"Include archived habits."`
}

func (c *ListCmd) Run(ctx *Context) error {
	ctrl, err := ctx.App()
	if err != nil {
		return err
	}

	coll := ctrl.Collection()
	if !c.Archived {
		coll = coll.Active()
	}
	if len(coll) == 0 {
		ctx.println("No habits found.")
		return nil
	}

	loc := ctrl.Calendar().Location()
	tbl := newTable("ID", "NAME", "LOGS", "LAST", "STATUS")
	for _, h := range coll {
		last := "-"
		if t, ok := h.Latest(); ok {
			last = t.In(loc).Format(displayTimeFormat)
		}
		status := "active"
		name := h.Name
		if h.Archived {
			status = mutedStyle.Render("archived")
			name = mutedStyle.Render(name)
		}
		tbl.AddRow(h.ID, name, strconv.Itoa(len(h.Logs)), last, status)
	}
	ctx.println(tbl)
	return nil
}

type IncCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Count int    `help:"Number of occurrences to record." default:"1"`
}

func (c *IncCmd) Run(ctx *Context) error {
	if c.Count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", c.Count)
	}
	ctrl, id, err := resolve(ctx, c.Habit)
	if err != nil {
		return err
	}

	actions := make([]habits.Action, c.Count)
	for i := range actions {
		actions[i] = habits.IncrementHabit{HabitID: id}
	}
	if _, err := ctrl.DispatchAll(ctx.Ctx(), actions...); err != nil {
		return err
	}

	h, err := ctrl.Resolve(id)
	if err != nil {
		return err
	}
	ctx.println(success(fmt.Sprintf("Recorded %s (%d total)", h.Name, len(h.Logs))))
	return nil
}

type UndoCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *UndoCmd) Run(ctx *Context) error {
	ctrl, id, err := resolve(ctx, c.Habit)
	if err != nil {
		return err
	}
	h, err := ctrl.Resolve(id)
	if err != nil {
		return err
	}
	last, ok := h.LastLog()
	if !ok {
		ctx.printf("No entries to remove for %s.\n", h.Name)
		return nil
	}

	if _, err := ctrl.Dispatch(ctx.Ctx(), habits.DeleteLastEntry{HabitID: id}); err != nil {
		return err
	}
	when := last.Time.In(ctrl.Calendar().Location()).Format(displayTimeFormat)
	ctx.println(success(fmt.Sprintf("Removed last entry of %s (%s)", h.Name, when)))
	return nil
}

type RenameCmd struct {
	Habit   string `arg:"" help:"Habit id or name."`
	NewName string `arg:"" help:"New habit name."`
}

func (c *RenameCmd) Run(ctx *Context) error {
	ctrl, id, err := resolve(ctx, c.Habit)
	if err != nil {
		return err
	}
	coll, err := ctrl.Dispatch(ctx.Ctx(), habits.RenameHabit{HabitID: id, NewName: c.NewName})
	if err != nil {
		return err
	}
	h, _ := coll.Get(id)
	ctx.println(success(fmt.Sprintf("Renamed habit to: %s", h.Name)))
	return nil
}

type ArchiveCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *ArchiveCmd) Run(ctx *Context) error {
	ctrl, id, err := resolve(ctx, c.Habit)
	if err != nil {
		return err
	}
	coll, err := ctrl.Dispatch(ctx.Ctx(), habits.ToggleArchive{HabitID: id})
	if err != nil {
		return err
	}
	h, _ := coll.Get(id)
	if h.Archived {
		ctx.println(success("Archived habit: " + h.Name))
	} else {
		ctx.println(success("Unarchived habit: " + h.Name))
	}
	return nil
}

type DeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	ctrl, id, err := resolve(ctx, c.Habit)
	if err != nil {
		return err
	}
	h, err := ctrl.Resolve(id)
	if err != nil {
		return err
	}

	ok, err := ctx.confirm(c.Yes,
		fmt.Sprintf("Delete %q?", h.Name),
		fmt.Sprintf("This permanently removes the habit and its %d entries.", len(h.Logs)))
	if err != nil {
		return err
	}
	if !ok {
		ctx.println("Delete cancelled.")
		return nil
	}

	if _, err := ctrl.Dispatch(ctx.Ctx(), habits.DeleteHabit{HabitID: id}); err != nil {
		return err
	}
	ctx.println(success("Deleted habit: " + h.Name))
	return nil
}
