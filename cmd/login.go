package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/jmehdipour/wasend/internal/browser"
	"github.com/jmehdipour/wasend/internal/config"
	"github.com/jmehdipour/wasend/internal/logger"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open the browser for the one-time QR scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level, cfg.Log.Encoding)

		// QR scanning needs a visible window regardless of config
		b := cfg.Browser
		sess, err := browser.NewSession(browser.Opts{
			UserDataDir:    b.UserDataDir,
			ExecPath:       b.ExecPath,
			Headless:       false,
			WindowWidth:    b.WindowWidth,
			WindowHeight:   b.WindowHeight,
			ActionTimeout:  b.ActionTimeout,
			StartupTimeout: b.StartupTimeout,
		})
		if err != nil {
			return fmt.Errorf("browser session: %w", err)
		}
		defer sess.Close()

		state := sess.CheckLogin(cmd.Context(), cfg.Sender.BaseURL, 10*time.Second)
		fmt.Printf("login probe: %s\n", state)
		if state == browser.StateLoggedIn {
			fmt.Println("profile already logged in")
			return nil
		}

		fmt.Print("scan the QR code in the opened window, then press Enter: ")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

		state = sess.CheckLogin(cmd.Context(), cfg.Sender.BaseURL, 10*time.Second)
		fmt.Printf("login probe: %s\n", state)
		if state != browser.StateLoggedIn {
			fmt.Println("probe is inconclusive; the heuristics are best-effort, proceed if the chat list is visible")
		}

		return nil
	},
}
