package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/profile"
)

var editReq profile.EditRequest

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your profile",
}

var profileViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show your profile",
	RunE:  runProfileView,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Update profile fields",
	Long: `Update profile fields. Only the flags you pass are sent.

Examples:

  devtinder profile edit --about "Gopher since r59."
  devtinder profile edit --skills go --skills postgres
  devtinder profile edit --photo ./headshot.jpg`,
	RunE: runProfileEdit,
}

func init() {
	profileEditCmd.Flags().StringVar(&editReq.FirstName, "first-name", "", "first name")
	profileEditCmd.Flags().StringVar(&editReq.LastName, "last-name", "", "last name")
	profileEditCmd.Flags().IntVar(&editReq.Age, "age", 0, "age")
	profileEditCmd.Flags().StringVar(&editReq.Gender, "gender", "", "gender")
	profileEditCmd.Flags().StringVar(&editReq.About, "about", "", "about text")
	profileEditCmd.Flags().StringSliceVar(&editReq.Skills, "skills", nil, "skills (repeatable)")
	profileEditCmd.Flags().StringVar(&editReq.PhotoPath, "photo", "", "photo file to upload")

	profileCmd.AddCommand(profileViewCmd, profileEditCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileView(cmd *cobra.Command, args []string) error {
	a, err := newApp(api.NopNavigator{}, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := a.requestCtx()
	defer cancel()
	user, err := a.profile.View(ctx)
	if err != nil {
		return describeAuth(err)
	}
	return printUser(*user)
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	changed := false
	for _, name := range []string{"first-name", "last-name", "age", "gender", "about", "skills", "photo"} {
		if cmd.Flags().Changed(name) {
			changed = true
			break
		}
	}
	if !changed {
		return fmt.Errorf("nothing to update; pass at least one field flag")
	}

	a, err := newApp(api.NopNavigator{}, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := a.requestCtx()
	defer cancel()
	user, err := a.profile.Edit(ctx, editReq)
	if err != nil {
		return describeAuth(err)
	}

	fmt.Println("Profile updated")
	return printUser(*user)
}
