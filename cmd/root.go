// Package cmd implements the command-line interface for the kasha playback client.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kasha-player/kasha/color"
	"github.com/kasha-player/kasha/constant"
	"github.com/kasha-player/kasha/icon"
	"github.com/kasha-player/kasha/key"
	"github.com/kasha-player/kasha/log"
	"github.com/kasha-player/kasha/session"
	"github.com/kasha-player/kasha/style"
	"github.com/kasha-player/kasha/util"
	"github.com/kasha-player/kasha/version"
	"github.com/kasha-player/kasha/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().StringP("server", "s", "", "Base URL of the karaoke controller server")
	lo.Must0(viper.BindPFlag(key.ServerURL, rootCmd.Flags().Lookup("server")))

	rootCmd.Flags().StringP("player", "p", "", "Media backend to drive (mpv, iina)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("player", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"mpv", "iina"}, cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.Player, rootCmd.Flags().Lookup("player")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd runs the unattended playback session against the controller server.
var rootCmd = &cobra.Command{
	Use:   constant.Kasha,
	Short: "An unattended karaoke playback client",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - An unattended karaoke playback client driven by a remote controller"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if viper.GetString(key.Player) == "mpv" {
			CheckDependencies()
		}

		handleErr(ensureServerURL())

		manager, err := session.New()
		handleErr(err)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("%s Connected as playback client, waiting for the controller...\n", icon.Get(icon.Note))
		handleErr(manager.Run(ctx))
	},
}

// ensureServerURL prompts for the controller address on first run and
// persists it to the configuration file.
func ensureServerURL() error {
	if viper.GetString(key.ServerURL) != "" {
		return nil
	}

	var url string
	prompt := &survey.Input{
		Message: "Controller server URL:",
		Help:    "The base address of the karaoke controller, e.g. http://controller.local:8080",
	}
	if err := survey.AskOne(prompt, &url, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	viper.Set(key.ServerURL, strings.TrimSpace(url))
	return writeConfig()
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
