package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/securo-skn/crimefeed/internal/server"
	"github.com/securo-skn/crimefeed/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the incident feed HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := viper.GetString("server.listen")
		schedule := viper.GetString("refresh.schedule")

		a, err := newApp(viper.GetString("db.path"))
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if schedule != "" {
			c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(utils.Log))))
			if _, err := c.AddFunc(schedule, func() {
				res := a.feed.Refresh(ctx)
				utils.Log.Infof("Scheduled refresh: %d incidents from %d sources", res.IncidentsFound, len(res.SourcesChecked))
			}); err != nil {
				return err
			}
			c.Start()
			defer c.Stop()
			utils.Log.Infof("Background refresh scheduled: %s", schedule)
		}

		srv := server.New(a.feed, viper.GetString("server.username"), viper.GetString("server.password"))
		srv.Gatherer = a.registry
		srv.Log = utils.Log
		if a.archive != nil {
			srv.Archive = a.archive
		}

		return srv.Start(ctx, listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("schedule", "@every 10m", "Background refresh schedule in cron syntax (empty to disable)")
	serveCmd.Flags().String("db", "", "Archive scraped incidents to this SQLite file")
	serveCmd.Flags().String("username", "", "Basic auth username for the API")
	serveCmd.Flags().String("password", "", "Basic auth password for the API")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("refresh.schedule", serveCmd.Flags().Lookup("schedule"))
	viper.BindPFlag("db.path", serveCmd.Flags().Lookup("db"))
	viper.BindPFlag("server.username", serveCmd.Flags().Lookup("username"))
	viper.BindPFlag("server.password", serveCmd.Flags().Lookup("password"))
}
