package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/connect"
)

var feedCmd = &cobra.Command{
	Use:   "feed [interested|ignored <user-id>]",
	Short: "Show the feed, or act on a feed profile",
	Long: `Show the feed of candidate profiles, or act on one of them.

Examples:

  devtinder feed
  devtinder feed interested 64a1f2...
  devtinder feed ignored 64a1f2...`,
	Args: cobra.RangeArgs(0, 2),
	RunE: listRunner(connect.Feed),
}

var requestsCmd = &cobra.Command{
	Use:   "requests [accept|reject <user-id>]",
	Short: "Show received requests, or review one",
	Long: `Show connection requests other users sent you, or review one.

Examples:

  devtinder requests
  devtinder requests accept 64a1f2...
  devtinder requests reject 64a1f2...`,
	Args: cobra.RangeArgs(0, 2),
	RunE: listRunner(connect.Requests),
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Show your connections",
	Args:  cobra.NoArgs,
	RunE:  listRunner(connect.Connections),
}

func init() {
	rootCmd.AddCommand(feedCmd, requestsCmd, connectionsCmd)
}

// cliStatuses maps command verbs to the wire statuses.
var cliStatuses = map[string]connect.Status{
	"interested": connect.StatusInterested,
	"ignored":    connect.StatusIgnored,
	"accept":     connect.StatusAccepted,
	"reject":     connect.StatusRejected,
}

// listRunner builds the RunE shared by the three list commands: no args
// lists, two args act on one item.
func listRunner(ep connect.Endpoint) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(api.NopNavigator{}, false)
		if err != nil {
			return err
		}
		defer a.close()

		ctrl := connect.NewController(a.client, ep, a.logger)

		if len(args) == 0 {
			ctx, cancel := a.requestCtx()
			defer cancel()
			items, err := ctrl.Fetch(ctx)
			if err != nil {
				return describeAuth(err)
			}
			return printUsers(items)
		}

		if len(args) != 2 {
			return fmt.Errorf("expected an action and a user id")
		}
		status, ok := cliStatuses[args[0]]
		if !ok {
			return fmt.Errorf("unknown action %q", args[0])
		}

		// The controller validates against its own endpoint; prefetch so
		// removal bookkeeping has the item.
		ctx, cancel := a.requestCtx()
		defer cancel()
		if _, err := ctrl.Fetch(ctx); err != nil {
			return describeAuth(err)
		}
		if err := ctrl.Act(ctx, status, args[1]); err != nil {
			return describeAuth(err)
		}
		fmt.Printf("Marked %s as %s\n", args[1], status)
		return nil
	}
}

// describeAuth turns auth failures into a friendlier message.
func describeAuth(err error) error {
	if api.IsAuthFailure(err) {
		return fmt.Errorf("not signed in (run: devtinder login)")
	}
	return err
}
