package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/client"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/services"
	"github.com/dmitrijs2005/perfumekeeper/internal/common"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetRequiredText(a.reader, "-Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := GetRequiredText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.auth.Register(ctx, name, email, string(password))
	if err != nil {
		return err
	}
	a.println("Registered", acc.Email, "with id", acc.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetRequiredText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, email, string(password)); err != nil {
		a.logger.Debug(ctx, "login failed", "email", email, "error", err)
		return err
	}
	a.println("Logged in as", email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.perfumes.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No perfumes yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tSTOCK\tPRICE\tDESCRIPTION")
	for _, p := range items {
		desc := ""
		if p.Description != nil {
			desc = *p.Description
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%s\n", p.ID, p.Name, p.Brand, p.Stock, p.Price, desc)
	}
	return tw.Flush()
}

func (a *App) Add(ctx context.Context) error {
	var d models.PerfumeDraft
	var err error

	if d.Name, err = GetRequiredText(a.reader, "-Name", a.out); err != nil {
		return err
	}
	if d.Brand, err = GetRequiredText(a.reader, "-Brand", a.out); err != nil {
		return err
	}
	desc, err := GetSimpleText(a.reader, "-Description (optional)", a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		d.Description = &desc
	}
	if d.Stock, err = GetInt(a.reader, "-Stock", a.out); err != nil {
		return err
	}
	if d.Price, err = GetFloat(a.reader, "-Price", a.out); err != nil {
		return err
	}

	p, err := a.perfumes.Add(ctx, d)
	if err != nil {
		return err
	}
	a.println("Added perfume", p.ID)
	return nil
}

func (a *App) Update(ctx context.Context, args []string) error {
	id, err := a.targetID(args)
	if err != nil {
		return err
	}

	var c models.PerfumeChanges
	a.println("Leave a field empty to keep it")
	if c.Name, err = optionalText(a, "-Name"); err != nil {
		return err
	}
	if c.Brand, err = optionalText(a, "-Brand"); err != nil {
		return err
	}
	desc, err := GetSimpleText(a.reader, "-Description ('-' clears it)", a.out)
	if err != nil {
		return err
	}
	switch desc {
	case "":
	case "-":
		c.ClearDescription = true
	default:
		c.Description = &desc
	}
	if c.Stock, err = GetOptionalInt(a.reader, "-Stock", a.out); err != nil {
		return err
	}
	if c.Price, err = GetOptionalFloat(a.reader, "-Price", a.out); err != nil {
		return err
	}

	if c.Empty() {
		a.println("Nothing to change")
		return nil
	}
	p, err := a.perfumes.Update(ctx, id, c)
	if err != nil {
		return err
	}
	a.println("Updated perfume", p.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.targetID(args)
	if err != nil {
		return err
	}
	if err := a.perfumes.Delete(ctx, id); err != nil {
		return err
	}
	a.println("Deleted perfume", id)
	return nil
}

func (a *App) Health(ctx context.Context) error {
	if err := a.health.Ping(ctx); err != nil {
		return err
	}
	a.println("Server is serving")
	return nil
}

func (a *App) targetID(args []string) (int64, error) {
	if len(args) > 0 {
		return parseID(args[0])
	}
	s, err := GetRequiredText(a.reader, "-Perfume id", a.out)
	if err != nil {
		return 0, err
	}
	return parseID(s)
}

func optionalText(a *App, prompt string) (*string, error) {
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "server returned " + strconv.Itoa(apiErr.Status)
		}
		if errors.Is(err, services.ErrNotLoggedIn) {
			msg += "; please log in again"
		}
		return msg
	case errors.Is(err, services.ErrNotLoggedIn):
		return "not logged in, use 'login' first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
