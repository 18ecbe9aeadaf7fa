// Autofarm — ферма аккаунтов игры.
//
// Для каждой сессии из SESSIONS_DIR запускается свой AccountWorker:
// аутентификация, регистрация, задания, награда, сон до следующего цикла.
//
// Использование:
//
//	autofarm [--env-file FILE] [--json] [command]
//
// Команды:
//
//	run       Запуск фермы (по умолчанию)
//	accounts  Сессии, прокси и User-Agent
//	events    Журнал событий из RabbitMQ
//	status    Состояние воркеров запущенной фермы
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Autofarm/internal/cli"
	"github.com/shaiso/Autofarm/internal/config"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var envFile string
	var jsonOutput bool
	var statusAddr string

	configFn := func() (*config.Config, error) { return config.Load(envFile) }
	clientFn := func() *cli.Client { return cli.NewClient(statusAddr) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	runCmd := cli.NewRunCmd(configFn)

	rootCmd := &cobra.Command{
		Use:           "autofarm",
		Short:         "Autofarm — automates game accounts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runCmd.RunE,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default .env if present)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	statusCmd := cli.NewStatusCmd(clientFn, outputFn)
	statusCmd.Flags().StringVar(&statusAddr, "addr", cli.DefaultStatusAddr, "Address of a running farm")

	rootCmd.AddCommand(
		runCmd,
		cli.NewAccountsCmd(configFn, outputFn),
		cli.NewEventsCmd(configFn, outputFn),
		statusCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
