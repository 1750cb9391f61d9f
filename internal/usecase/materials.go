package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

// MaterialUseCase attaches references to externally stored files to orders.
type MaterialUseCase struct {
	orders    repository.OrderRepository
	materials repository.MaterialRepository
}

// NewMaterialUseCase constructs MaterialUseCase.
func NewMaterialUseCase(orders repository.OrderRepository, materials repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{orders: orders, materials: materials}
}

type materialInput struct {
	Name string `validate:"required,max=255"`
	URL  string `validate:"required,url,max=2048"`
}

// AttachMaterial links a file to an active order. Either party may attach.
func (u *MaterialUseCase) AttachMaterial(ctx context.Context, actor model.Actor, orderID uuid.UUID, name, url string) (*model.Material, error) {
	in := materialInput{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	order, err := u.partyOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domainErrors.New(domainErrors.ErrInvalidState, "order %s is %s", order.ID, order.Status)
	}

	material := &model.Material{OrderID: order.ID, UploaderID: actor.UserID, Name: in.Name, URL: in.URL}
	if err := u.materials.Create(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

// ListMaterials returns files attached to the order.
func (u *MaterialUseCase) ListMaterials(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Material, error) {
	if _, err := u.partyOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return u.materials.ListByOrder(ctx, orderID)
}

func (u *MaterialUseCase) partyOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsFundingParty(actor.UserID) && !order.IsFulfiller(actor.UserID) {
		return nil, domainErrors.New(domainErrors.ErrPermissionDenied, "not a party to order %s", order.ID)
	}
	return order, nil
}
