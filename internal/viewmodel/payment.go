package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"nftmarket/internal/models"
)

type PaymentService interface {
	LoadPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	PerformPayment(ctx context.Context, currencyID string) (models.PaymentResult, error)
}

// OrderClearer empties the cart after a successful payment.
type OrderClearer interface {
	UpdateOrder(ctx context.Context, nftIDs []string) (models.Order, error)
}

type PaymentPhase int

const (
	PaymentInitial PaymentPhase = iota
	PaymentLoading
	PaymentLoaded
	PaymentError
)

func (p PaymentPhase) String() string {
	switch p {
	case PaymentInitial:
		return "initial"
	case PaymentLoading:
		return "loading"
	case PaymentLoaded:
		return "loaded"
	case PaymentError:
		return "error"
	default:
		return "unknown"
	}
}

type PaymentState struct {
	Phase   PaymentPhase
	Methods []models.PaymentMethod
	Err     error
}

type PaymentView interface {
	PaymentStateChanged(state PaymentState)
	PaymentSucceeded(result models.PaymentResult)
	PaymentFailed(em ErrorModel)
}

type PaymentViewModel struct {
	payments PaymentService
	orders   OrderClearer
	view     PaymentView

	mu       sync.Mutex
	state    PaymentState
	selected string
	hasSel   bool
}

func NewPaymentViewModel(payments PaymentService, orders OrderClearer, view PaymentView) *PaymentViewModel {
	return &PaymentViewModel{payments: payments, orders: orders, view: view}
}

// LoadPaymentMethods is a no-op while a load is already running.
func (vm *PaymentViewModel) LoadPaymentMethods(ctx context.Context) error {
	vm.mu.Lock()
	if vm.state.Phase == PaymentLoading {
		vm.mu.Unlock()
		return nil
	}
	vm.state = PaymentState{Phase: PaymentLoading}
	vm.mu.Unlock()
	vm.emit()

	methods, err := vm.payments.LoadPaymentMethods(ctx)

	vm.mu.Lock()
	if err != nil {
		vm.state = PaymentState{Phase: PaymentError, Err: err}
	} else {
		vm.state = PaymentState{Phase: PaymentLoaded, Methods: methods}
	}
	vm.mu.Unlock()

	if err != nil {
		slog.Error("Failed to load payment methods", "error", err)
	}
	vm.emit()
	return err
}

// SelectPaymentMethod selects the method at index in the loaded list. An
// index out of range clears the selection.
func (vm *PaymentViewModel) SelectPaymentMethod(index int) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	methods := vm.state.Methods
	if index < 0 || index >= len(methods) {
		vm.selected, vm.hasSel = "", false
		slog.Warn("Payment method index out of range", "index", index, "count", len(methods))
		return fmt.Errorf("index %d of %d: %w", index, len(methods), ErrInvalidSelection)
	}
	vm.selected, vm.hasSel = methods[index].ID, true
	return nil
}

func (vm *PaymentViewModel) SelectedMethodID() (string, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selected, vm.hasSel
}

func (vm *PaymentViewModel) State() PaymentState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	st := vm.state
	st.Methods = slices.Clone(st.Methods)
	return st
}

// PerformPayment pays for the order with the selected method. On success
// the cart is cleared best effort; a failure there is only logged.
func (vm *PaymentViewModel) PerformPayment(ctx context.Context) (models.PaymentResult, error) {
	id, ok := vm.SelectedMethodID()
	if !ok {
		vm.fail(ErrNoMethodSelected)
		return models.PaymentResult{}, ErrNoMethodSelected
	}

	result, err := vm.payments.PerformPayment(ctx, id)
	if err != nil {
		slog.Error("Payment failed", "currency_id", id, "error", err)
		vm.fail(err)
		return models.PaymentResult{}, err
	}
	if !result.Success {
		slog.Warn("Payment rejected", "currency_id", id, "order_id", result.OrderID)
		vm.fail(ErrPaymentRejected)
		return result, ErrPaymentRejected
	}

	if _, err := vm.orders.UpdateOrder(ctx, []string{}); err != nil {
		slog.Error("Failed to clear cart after payment", "order_id", result.OrderID, "error", err)
	}

	slog.Info("Payment succeeded", "currency_id", id, "order_id", result.OrderID)
	if vm.view != nil {
		vm.view.PaymentSucceeded(result)
	}
	return result, nil
}

func (vm *PaymentViewModel) fail(err error) {
	if vm.view == nil {
		return
	}
	vm.view.PaymentFailed(paymentErrorModel(err, func(ctx context.Context) error {
		_, err := vm.PerformPayment(ctx)
		return err
	}))
}

func (vm *PaymentViewModel) emit() {
	if vm.view != nil {
		vm.view.PaymentStateChanged(vm.State())
	}
}
