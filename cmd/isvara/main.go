// Command isvara runs inventory chores from the shell: spreadsheet import and
// export, JSON backups and user administration.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/excel"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/logging"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/service"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/session"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("isvara failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "isvara",
		Usage: "Isvara inventory maintenance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file to read"},
			&cli.StringFlag{Name: "backend", Usage: "OFFLINE or ONLINE (default from ISVARA_MODE)"},
			&cli.StringFlag{Name: "login-username", EnvVars: []string{"ISVARA_USERNAME"}, Usage: "ONLINE login"},
			&cli.StringFlag{Name: "login-password", EnvVars: []string{"ISVARA_PASSWORD"}, Usage: "ONLINE password"},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "import products from an xlsx or csv file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Value: "skip", Usage: "existing SKUs: skip or overwrite"},
					&cli.StringFlag{Name: "strategy", Value: "auto", Usage: "auto, fixed or header"},
				},
				Action: runImport,
			},
			{
				Name:      "export",
				Usage:     "export products to xlsx or csv (by file extension)",
				ArgsUsage: "<out.xlsx|out.csv>",
				Action:    runExport,
			},
			{
				Name:      "backup",
				Usage:     "write a JSON backup",
				ArgsUsage: "<out.json>",
				Action:    runBackup,
			},
			{
				Name:      "restore",
				Usage:     "restore a JSON backup",
				ArgsUsage: "<in.json>",
				Action:    runRestore,
			},
			{
				Name:  "user",
				Usage: "manage users",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "create or update a user",
						ArgsUsage: "<username>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "role", Value: "STAFF", Usage: "OWNER, ADMIN or STAFF"},
							&cli.StringFlag{Name: "password", Required: true, Usage: "password for the new user"},
						},
						Action: runUserAdd,
					},
				},
			},
		},
	}
}

// openSession loads config and logs in with the selected backend. The
// caller closes the returned manager.
func openSession(c *cli.Context) (*session.Manager, *session.Session, error) {
	cfg, err := config.LoadFile(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	mode := cfg.Mode
	if raw := c.String("backend"); raw != "" {
		if mode, err = config.ParseMode(raw); err != nil {
			return nil, nil, err
		}
	}

	manager := session.NewManager(cfg, nil)
	var sess *session.Session
	if mode == config.ModeOnline {
		username, password := loginCredentials(c)
		sess, err = manager.LoginOnline(c.Context, username, password)
	} else {
		sess, err = manager.LoginOffline(c.Context)
	}
	if err != nil {
		return nil, nil, err
	}
	return manager, sess, nil
}

// loginCredentials reads the ONLINE login from the root flags. The names
// differ from subcommand flags such as "user add --password".
func loginCredentials(c *cli.Context) (string, string) {
	return c.String("login-username"), c.String("login-password")
}

func requireArg(c *cli.Context, name string) (string, error) {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return "", cli.Exit(fmt.Sprintf("missing %s argument", name), 2)
	}
	return arg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runImport(c *cli.Context) error {
	path, err := requireArg(c, "file")
	if err != nil {
		return err
	}
	strategy, err := excel.ParseStrategy(c.String("strategy"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	duplicates, err := service.ParseDuplicateMode(c.String("mode"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	manager, sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer manager.Close()

	result, err := sess.Service.ImportProducts(c.Context, sess.Actor(), filepath.Base(path), file, service.ImportOptions{
		Strategy:   strategy,
		Duplicates: duplicates,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runExport(c *cli.Context) error {
	path, err := requireArg(c, "output file")
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".csv" {
		return cli.Exit("output must end in .xlsx or .csv", 2)
	}

	manager, sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer manager.Close()

	products, err := sess.Service.ListProducts(c.Context)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if ext == ".csv" {
		err = excel.WriteProductsCSV(out, products)
	} else {
		err = excel.WriteProductsXLSX(out, products)
	}
	if err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	log.Info().Str("file", path).Int("products", len(products)).Msg("export written")
	return out.Close()
}

func runBackup(c *cli.Context) error {
	path, err := requireArg(c, "output file")
	if err != nil {
		return err
	}
	manager, sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer manager.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := sess.Service.WriteBackup(c.Context, out); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("backup written")
	return out.Close()
}

func runRestore(c *cli.Context) error {
	path, err := requireArg(c, "backup file")
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	manager, sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer manager.Close()

	summary, err := sess.Service.RestoreFrom(c.Context, sess.Actor(), in)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func runUserAdd(c *cli.Context) error {
	username, err := requireArg(c, "username")
	if err != nil {
		return err
	}
	manager, sess, err := openSession(c)
	if err != nil {
		return err
	}
	defer manager.Close()

	user, err := sess.Service.SaveUser(c.Context, sess.Actor(), service.UserInput{
		Username: username,
		Password: c.String("password"),
		Role:     c.String("role"),
	})
	if err != nil {
		return err
	}
	return printJSON(user)
}
