package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/wasend/internal/browser"
	"github.com/jmehdipour/wasend/internal/config"
	"github.com/jmehdipour/wasend/internal/dispatcher"
	"github.com/jmehdipour/wasend/internal/logger"
	"github.com/jmehdipour/wasend/internal/model"
	"github.com/jmehdipour/wasend/internal/runner"
	"github.com/jmehdipour/wasend/internal/service/sendrun"
	"github.com/jmehdipour/wasend/internal/sheet"
	"github.com/spf13/cobra"
)

var (
	sendFile       string
	sendURL        string
	sendDelay      time.Duration
	assumeLoggedIn bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run a one-shot bulk send from a CSV/XLSX file or sheet URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level, cfg.Log.Encoding)
		log := logger.Log

		if (sendFile == "") == (sendURL == "") {
			return fmt.Errorf("exactly one of --file or --url is required")
		}

		loader := sheet.NewLoader(nil)
		var contacts []model.Contact
		if sendFile != "" {
			contacts, err = loader.FromFile(sendFile)
		} else {
			contacts, err = loader.FromURL(cmd.Context(), sendURL)
		}
		if err != nil {
			return fmt.Errorf("load contacts: %w", err)
		}
		fmt.Printf("loaded %d contacts\n", len(contacts))

		b := cfg.Browser
		sess, err := browser.NewSession(browser.Opts{
			UserDataDir:    b.UserDataDir,
			ExecPath:       b.ExecPath,
			Headless:       b.Headless,
			WindowWidth:    b.WindowWidth,
			WindowHeight:   b.WindowHeight,
			ActionTimeout:  b.ActionTimeout,
			StartupTimeout: b.StartupTimeout,
		})
		if err != nil {
			return fmt.Errorf("browser session: %w", err)
		}
		defer sess.Close()

		if !assumeLoggedIn {
			state := sess.CheckLogin(cmd.Context(), cfg.Sender.BaseURL, 10*time.Second)
			fmt.Printf("login probe: %s\n", state)
			fmt.Print("scan the QR code in the browser window if needed, then press Enter to start sending: ")
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		}

		seq := dispatcher.NewSequencer(
			sess,
			sendrun.StrategiesFromConfig(cfg.Strategies, log),
			dispatcher.Config{
				BaseURL:    cfg.Sender.BaseURL,
				RenderWait: cfg.Sender.RenderWait,
				SettleWait: cfg.Sender.SettleWait,
			},
			log,
		)

		delay := sendDelay
		if delay <= 0 {
			delay = cfg.Sender.MessageDelay
		}
		r := runner.New(seq, delay, log)

		// SIGINT stops after the in-flight contact
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Println("\nstopping after current contact...")
			r.Stop()
		}()

		summary := r.Run(context.Background(), contacts)

		fmt.Printf("done: %d/%d sent, %d failed", summary.Sent, summary.Total, summary.Failed)
		if summary.Stopped {
			fmt.Print(" (stopped early)")
		}
		fmt.Println()

		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendFile, "file", "", "path to a CSV or XLSX contact file")
	sendCmd.Flags().StringVar(&sendURL, "url", "", "published Google Sheets URL")
	sendCmd.Flags().DurationVar(&sendDelay, "delay", 0, "delay between messages (default from config)")
	sendCmd.Flags().BoolVar(&assumeLoggedIn, "assume-logged-in", false, "skip the interactive login confirmation")
}
