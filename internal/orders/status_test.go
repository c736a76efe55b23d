package orders

import (
	"testing"

	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		actor    Actor
		from, to enums.OrderStatus
		code     pkgerrors.Code
	}{
		{ActorAdmin, enums.OrderStatusProcessing, enums.OrderStatusDelivered, ""},
		{ActorAdmin, enums.OrderStatusProcessing, enums.OrderStatusCancelled, ""},
		{ActorAdmin, enums.OrderStatusDelivered, enums.OrderStatusCancelled, pkgerrors.CodeStateConflict},
		{ActorAdmin, enums.OrderStatusDelivered, enums.OrderStatusReturnRequested, pkgerrors.CodeForbidden},
		{ActorAdmin, enums.OrderStatusCancelled, enums.OrderStatusProcessing, pkgerrors.CodeStateConflict},
		{ActorCustomer, enums.OrderStatusProcessing, enums.OrderStatusCancelled, ""},
		{ActorCustomer, enums.OrderStatusProcessing, enums.OrderStatusDelivered, pkgerrors.CodeForbidden},
		{ActorCustomer, enums.OrderStatusDelivered, enums.OrderStatusReturnRequested, ""},
		{ActorCustomer, enums.OrderStatusProcessing, enums.OrderStatusReturnRequested, pkgerrors.CodeStateConflict},
		{ActorCustomer, enums.OrderStatusReturnRequested, enums.OrderStatusCancelled, pkgerrors.CodeStateConflict},
	}

	for _, tc := range cases {
		err := CheckTransition(tc.actor, tc.from, tc.to)
		if tc.code == "" {
			if err != nil {
				t.Fatalf("%s %s->%s: unexpected error %v", tc.actor, tc.from, tc.to, err)
			}
			continue
		}
		if !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s %s->%s: expected %s, got %v", tc.actor, tc.from, tc.to, tc.code, err)
		}
	}
}
