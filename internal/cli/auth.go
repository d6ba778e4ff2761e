package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

type RegisterCmd struct {
	Name  string `help:"Display name."`
	Email string `help:"Email address."`
}

func (c *RegisterCmd) Run(ctx *Context) error {
	name, email := c.Name, c.Email
	var password string

	fields := []huh.Field{}
	if name == "" {
		fields = append(fields, huh.NewInput().Title("Name").Value(&name))
	}
	if email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&email))
	}
	fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	user, err := ctx.Auth.Register(name, email, password)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.SetUser(user.ID); err != nil {
		return err
	}

	fmt.Printf("Welcome, %s! You are signed in as %s.\n", user.Name, user.Email)
	return nil
}

type LoginCmd struct {
	Email string `help:"Email address."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	email := c.Email
	var password string

	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&email))
	}
	fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	user, err := ctx.Auth.SignIn(email, password)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.SetUser(user.ID); err != nil {
		return err
	}

	fmt.Printf("Signed in as %s.\n", user.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.Auth.SignOut(); err != nil {
		return err
	}
	if err := ctx.Tracker.SetUser(""); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	user := ctx.Auth.Current()
	if user == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}
