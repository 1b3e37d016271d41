package shops

import (
	"context"
	"errors"

	"github.com/zeptools/gw-cardpress/nullable"
)

// DemoSlug is the shop created by Seed
const DemoSlug = "rose-studio"

// Seed creates the demo shop unless it exists. created reports which happened.
func Seed(ctx context.Context, store Store) (shop *Shop, created bool, err error) {
	shop, err = store.FindBySlug(ctx, DemoSlug)
	if err == nil {
		return shop, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	shop = &Shop{
		Slug:          DemoSlug,
		Name:          "Rose Studio",
		Email:         "test-shop@example.com",
		LogoURL:       nullable.StringFrom("https://placehold.co/100x100/png?text=RS"),
		IsActive:      true,
		ShowNameOnPDF: true,
	}
	if err = store.Create(ctx, shop); err != nil {
		return nil, false, err
	}
	return shop, true, nil
}
