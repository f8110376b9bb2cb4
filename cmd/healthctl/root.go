package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"healthtracker/internal/models"
	"healthtracker/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries the settings shared by every command.
type cli struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HEALTHCTL")
	v.SetDefault("api", client.DefaultBaseURL)
	v.SetDefault("credentials", defaultCredentialsPath())
	v.AutomaticEnv()

	app := &cli{v: v}

	root := &cobra.Command{
		Use:           "healthctl",
		Short:         "Log and review daily health metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.out = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().String("api", v.GetString("api"), "API base URL (env HEALTHCTL_API)")
	root.PersistentFlags().String("credentials", v.GetString("credentials"), "credentials file (env HEALTHCTL_CREDENTIALS)")
	_ = v.BindPFlag("api", root.PersistentFlags().Lookup("api"))
	_ = v.BindPFlag("credentials", root.PersistentFlags().Lookup("credentials"))

	root.AddCommand(
		app.registerCmd(),
		app.loginCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.logCmd(),
		app.listCmd(),
		app.deleteCmd(),
	)
	return root
}

func (a *cli) credentialsPath() string { return a.v.GetString("credentials") }

func (a *cli) newClient(opts ...client.Option) *client.Client {
	return client.New(a.v.GetString("api"), opts...)
}

// session runs fn with a client authenticated from the stored credentials.
// A rejected token clears the credentials so the next command asks for a login.
func (a *cli) session(ctx context.Context, fn func(context.Context, *client.Client) error) error {
	creds, err := loadCredentials(a.credentialsPath())
	if err != nil {
		return err
	}
	err = fn(ctx, a.newClient(client.WithToken(creds.Token)))
	if errors.Is(err, client.ErrUnauthorized) {
		if clearErr := clearCredentials(a.credentialsPath()); clearErr != nil {
			return clearErr
		}
		return fmt.Errorf("session expired, please run `healthctl login` again: %w", err)
	}
	return err
}

func (a *cli) remember(auth *models.AuthResponse) error {
	return saveCredentials(a.credentialsPath(), &credentials{Token: auth.Token, User: auth.User})
}
