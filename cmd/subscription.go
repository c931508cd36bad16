package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillz/internal/store"
	"github.com/abhisek/drillz/internal/subscription"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Manage learner subscriptions",
}

var subscriptionShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Show a learner's subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		sub, err := e.store.SubscriptionRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load subscription: %w", err)
		}
		if sub == nil {
			fmt.Printf("%s has no subscription\n", args[0])
			return nil
		}
		fmt.Printf("User:      %s\n", sub.UserID)
		fmt.Printf("Customer:  %s\n", sub.CustomerID)
		fmt.Printf("Price:     %s\n", sub.PriceID)
		fmt.Printf("Ends:      %s\n", sub.CurrentPeriodEnd.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Active:    %v\n", subscription.IsActive(sub, time.Now()))
		return nil
	},
}

var subscriptionSetCmd = &cobra.Command{
	Use:   "set <user>",
	Short: "Create or update a learner's subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, _ := cmd.Flags().GetString("price")
		customer, _ := cmd.Flags().GetString("customer")
		days, _ := cmd.Flags().GetInt("days")
		if price == "" {
			return fmt.Errorf("--price is required")
		}

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		end := time.Now().AddDate(0, 0, days)
		err = e.store.SubscriptionRepo().Upsert(cmd.Context(), store.Subscription{
			UserID:           args[0],
			CustomerID:       customer,
			PriceID:          price,
			CurrentPeriodEnd: end,
		})
		if err != nil {
			return fmt.Errorf("save subscription: %w", err)
		}
		fmt.Printf("%s subscribed until %s\n", args[0], end.Local().Format("2006-01-02"))
		return nil
	},
}

func init() {
	subscriptionSetCmd.Flags().String("price", "", "Price id of the plan")
	subscriptionSetCmd.Flags().String("customer", "", "Billing customer id")
	subscriptionSetCmd.Flags().Int("days", 30, "Length of the paid period in days")

	subscriptionCmd.AddCommand(subscriptionShowCmd)
	subscriptionCmd.AddCommand(subscriptionSetCmd)
}
