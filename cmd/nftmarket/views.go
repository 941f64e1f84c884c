package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"nftmarket/internal/models"
	"nftmarket/internal/reconcile"
	"nftmarket/internal/viewmodel"
)

// cartConsole prints the cart after the command finishes; until then it only
// keeps the latest rows and total.
type cartConsole struct {
	out   io.Writer
	items []models.CartItem
	total models.CartTotal
}

func (c *cartConsole) ShowLoading() { slog.Debug("Loading cart") }
func (c *cartConsole) HideLoading() {}

func (c *cartConsole) DisplayCartItems(items []models.CartItem) { c.items = items }
func (c *cartConsole) UpdateTotal(total models.CartTotal)       { c.total = total }

func (c *cartConsole) ShowError(em viewmodel.ErrorModel) {
	fmt.Fprintf(c.out, "%s [%s]\n", em.Message, em.ActionText)
}

func (c *cartConsole) render() {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRATING\tPRICE")
	for _, it := range c.items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f %s\n", it.ID, it.Name, it.Rating, it.Price, models.Currency)
	}
	tw.Flush()
	fmt.Fprintf(c.out, "%d NFT, total %s\n", c.total.Count, c.total.Price)
}

type collectionConsole struct {
	out io.Writer
}

func (c *collectionConsole) CollectionLoaded(cells []viewmodel.Cell) {
	slog.Debug("Collection loaded", "cells", len(cells))
}

func (c *collectionConsole) CellUpdated(cell viewmodel.Cell) {
	slog.Debug("Cell updated", "nft_id", cell.ID, "liked", cell.Liked, "in_cart", cell.InCart)
}

func (c *collectionConsole) CellFailed(cell viewmodel.Cell, action reconcile.Action, em viewmodel.ErrorModel) {
	fmt.Fprintf(c.out, "%s %s: %s\n", action, cell.ID, em.Message)
}

func renderCells(out io.Writer, cells []viewmodel.Cell) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRATING\tPRICE\tLIKED\tIN CART")
	for _, c := range cells {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f %s\t%s\t%s\n",
			c.ID, c.Name, c.Rating, c.Price, models.Currency, mark(c.Liked), mark(c.InCart))
	}
	tw.Flush()
}

type paymentConsole struct {
	out io.Writer
}

func (p *paymentConsole) PaymentStateChanged(s viewmodel.PaymentState) {
	slog.Debug("Payment state", "phase", s.Phase.String(), "methods", len(s.Methods))
}

func (p *paymentConsole) PaymentSucceeded(r models.PaymentResult) {
	fmt.Fprintf(p.out, "Payment succeeded, order %s, transaction %s\n", r.OrderID, r.ID)
}

func (p *paymentConsole) PaymentFailed(em viewmodel.ErrorModel) {
	fmt.Fprintf(p.out, "Payment failed: %s\n", em.Message)
}

func renderRows(out io.Writer, rows []viewmodel.NftRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAUTHOR\tRATING\tPRICE\tLIKED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Nft.ID, r.Nft.Name, r.Nft.Author, r.Nft.Rating, r.PriceText, mark(r.Liked))
	}
	tw.Flush()
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
