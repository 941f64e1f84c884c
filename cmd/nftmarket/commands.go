package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"nftmarket/internal/auth"
	"nftmarket/internal/models"
	"nftmarket/internal/viewmodel"
)

func catalogCmd(a *app) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List NFT collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := viewmodel.NewCatalogViewModel(a.svc.Catalog)
			vm.Sort(viewmodel.ParseCatalogSort(sortBy))
			list, err := vm.Load(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tAUTHOR\tNFTS")
			for _, c := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Author, c.Count())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by name or count")
	return cmd
}

func collectionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collection <collection-id>",
		Short: "Show the NFTs of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.collection(cmd, args[0])
			if err != nil {
				return err
			}
			col := vm.Collection()
			fmt.Fprintf(cmd.OutOrStdout(), "%s by %s\n%s\n\n", col.Name, col.Author, col.Description)
			renderCells(cmd.OutOrStdout(), vm.Cells())
			return nil
		},
	}
}

func likeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <collection-id> <nft-id>",
		Short: "Like or unlike an NFT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.collection(cmd, args[0])
			if err != nil {
				return err
			}
			liked, err := vm.ToggleLike(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s liked: %t\n", args[1], liked)
			return nil
		},
	}
}

func cartToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cart-toggle <collection-id> <nft-id>",
		Short: "Add an NFT to the cart or remove it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.collection(cmd, args[0])
			if err != nil {
				return err
			}
			inCart, err := vm.ToggleCart(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s in cart: %t\n", args[1], inCart)
			return nil
		},
	}
}

func (a *app) collection(cmd *cobra.Command, id string) (*viewmodel.CollectionViewModel, error) {
	col, err := a.findCollection(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	view := &collectionConsole{out: cmd.ErrOrStderr()}
	vm := viewmodel.NewCollectionViewModel(col, a.svc.Nfts, a.svc.Likes, a.svc.Orders, view)
	if err := vm.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return vm, nil
}

func cartCmd(a *app) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := &cartConsole{out: cmd.OutOrStdout()}
			vm := viewmodel.NewCartViewModel(a.svc.Cart, view)
			if err := vm.Load(cmd.Context()); err != nil {
				return err
			}
			if by := viewmodel.ParseCartSort(sortBy); by != viewmodel.CartSortNone {
				if err := vm.SetSort(cmd.Context(), by); err != nil {
					return err
				}
			}
			view.render()
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by price, name or rating")

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <nft-id>",
		Short: "Remove an NFT from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := &cartConsole{out: cmd.OutOrStdout()}
			vm := viewmodel.NewCartViewModel(a.svc.Cart, view)
			if err := vm.Load(cmd.Context()); err != nil {
				return err
			}
			if err := vm.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			view.render()
			return nil
		},
	})
	return cmd
}

func payCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pay [method-index]",
		Short: "List payment methods, or pay for the cart with one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := &paymentConsole{out: cmd.OutOrStdout()}
			vm := viewmodel.NewPaymentViewModel(a.svc.Payment, a.svc.Cart, view)
			if err := vm.LoadPaymentMethods(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 0 {
				for i, m := range vm.State().Methods {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s (%s)\n", i, m.Title, m.Name)
				}
				return nil
			}

			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("method index: %w", err)
			}
			if err := vm.SelectPaymentMethod(index); err != nil {
				return err
			}
			_, err = vm.PerformPayment(cmd.Context())
			return err
		},
	}
}

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := viewmodel.NewProfileViewModel(a.svc.Profile)
			p, err := vm.Load(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(cmd, vm, p)
			return nil
		},
	}

	var name, description, website, avatar string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Edit profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := viewmodel.NewProfileViewModel(a.svc.Profile)
			p, err := vm.Load(cmd.Context())
			if err != nil {
				return err
			}

			draft := viewmodel.NewEditProfile(p)
			if cmd.Flags().Changed("avatar") && !draft.UpdateAvatar(avatar) {
				return fmt.Errorf("invalid avatar URL %q", avatar)
			}
			if !cmd.Flags().Changed("name") {
				name = p.Name
			}
			if !cmd.Flags().Changed("description") {
				description = p.Description
			}
			if !cmd.Flags().Changed("website") {
				website = p.Website
			}

			p, err = vm.Update(cmd.Context(), draft.Updated(name, description, website))
			if err != nil {
				return err
			}
			printProfile(cmd, vm, p)
			return nil
		},
	}
	edit.Flags().StringVar(&name, "name", "", "Display name")
	edit.Flags().StringVar(&description, "description", "", "About text")
	edit.Flags().StringVar(&website, "website", "", "Website URL")
	edit.Flags().StringVar(&avatar, "avatar", "", "Avatar image URL")

	var sortBy string
	mine := &cobra.Command{
		Use:   "nfts",
		Short: "List the NFTs you own",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile(cmd.Context())
			if err != nil {
				return err
			}
			vm := viewmodel.NewMyNFTsViewModel(p, a.svc.Profile, a.svc.Likes, nil)
			if sortBy != "" {
				vm.Sort(viewmodel.MyNFTsSort(sortBy))
			}
			err = vm.Load(cmd.Context())
			renderRows(cmd.OutOrStdout(), vm.Rows())
			return err
		},
	}
	mine.Flags().StringVar(&sortBy, "sort", "", "Sort by price, rating or name")

	liked := &cobra.Command{
		Use:   "liked",
		Short: "List the NFTs you liked",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile(cmd.Context())
			if err != nil {
				return err
			}
			vm := viewmodel.NewLikedNFTsViewModel(p, a.svc.Profile, a.svc.Likes, nil)
			err = vm.Load(cmd.Context())
			renderRows(cmd.OutOrStdout(), vm.Rows())
			return err
		},
	}

	unlike := &cobra.Command{
		Use:   "unlike <nft-id>",
		Short: "Remove an NFT from your likes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile(cmd.Context())
			if err != nil {
				return err
			}
			vm := viewmodel.NewLikedNFTsViewModel(p, a.svc.Profile, a.svc.Likes, nil)
			if err := vm.Load(cmd.Context()); err != nil && !errors.Is(err, viewmodel.ErrPartialLoad) {
				return err
			}
			err = vm.Unlike(cmd.Context(), args[0])
			fmt.Fprintf(cmd.ErrOrStderr(), "unlike %s: %s\n", args[0], vm.UnlikeState(args[0]))
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), vm.Rows())
			return nil
		},
	}

	cmd.AddCommand(edit, mine, liked, unlike)
	return cmd
}

func printProfile(cmd *cobra.Command, vm *viewmodel.ProfileViewModel, p models.Profile) {
	out := cmd.OutOrStdout()
	mine, liked := vm.Counts()
	fmt.Fprintf(out, "%s\n%s\n", p.Name, p.Description)
	if u, err := vm.WebsiteURL(); err == nil {
		fmt.Fprintf(out, "Website: %s\n", u)
	}
	fmt.Fprintf(out, "My NFTs (%d)\nLiked NFTs (%d)\n", mine, liked)
}

func tokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed mobile token for the mock backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.IssueToken(a.cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "1", "Token subject (profile id)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
