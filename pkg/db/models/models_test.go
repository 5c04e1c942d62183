package models

import (
	"testing"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/enums"
)

func TestProductUpperBound(t *testing.T) {
	p := Product{StockQuantity: 5}
	if p.UpperBound() != 5 {
		t.Fatalf("expected stock to bound, got %d", p.UpperBound())
	}
	limit := 10
	p.MaxOrderQuantity = &limit
	if p.UpperBound() != 10 {
		t.Fatalf("expected max order quantity to bound, got %d", p.UpperBound())
	}
}

func TestNotificationPreferenceAllows(t *testing.T) {
	pref := DefaultNotificationPreference(uuid.New())
	for _, typ := range enums.NotificationTypes() {
		if !pref.Allows(typ) {
			t.Fatalf("defaults should allow %s", typ)
		}
	}

	pref.LowStock = false
	if pref.Allows(enums.NotificationTypeLowStock) {
		t.Fatal("expected low stock to be muted")
	}
	if !pref.Allows(enums.NotificationTypeSystemAnnouncement) {
		t.Fatal("announcements cannot be muted")
	}
}

func TestReviewValidate(t *testing.T) {
	product := uuid.New()
	shop := uuid.New()

	cases := []struct {
		name   string
		review Review
		want   error
	}{
		{name: "product target", review: Review{ProductID: &product, Rating: 5}},
		{name: "no target", review: Review{Rating: 3}, want: ErrReviewTarget},
		{name: "two targets", review: Review{ProductID: &product, ShopID: &shop, Rating: 3}, want: ErrReviewTarget},
		{name: "rating too low", review: Review{ShopID: &shop, Rating: 0}, want: ErrReviewRating},
		{name: "rating too high", review: Review{ShopID: &shop, Rating: 6}, want: ErrReviewRating},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.review.Validate(); err != tc.want {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}
