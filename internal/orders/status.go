package orders

import (
	"fmt"

	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
)

// Actor is who requests a status change.
type Actor string

const (
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
)

var actorTargets = map[Actor][]enums.OrderStatus{
	ActorAdmin:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	ActorCustomer: {enums.OrderStatusCancelled, enums.OrderStatusReturnRequested},
}

// CheckTransition reports whether actor may move an order from one status to another.
func CheckTransition(actor Actor, from, to enums.OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order cannot move from %s to %s", from, to)
	}
	for _, allowed := range actorTargets[actor] {
		if allowed == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s may not set status %s", actor, to))
}
