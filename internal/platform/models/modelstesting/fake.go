package modelstesting

import (
	"math/rand"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
)

// FakeIdentity returns models.ProductIdentity with fake data.
func FakeIdentity(ops ...func(p *models.ProductIdentity)) models.ProductIdentity {
	identity := models.ProductIdentity{
		Brand:       faker.Word(),
		ProductName: faker.Sentence(),
	}

	for _, op := range ops {
		op(&identity)
	}

	return identity
}

// FakeTrackedProduct returns models.TrackedProduct with fake data.
func FakeTrackedProduct(ops ...func(p *models.TrackedProduct)) models.TrackedProduct {
	product := models.TrackedProduct{
		Brand: faker.Word(),
		URL:   faker.URL(),
	}

	for _, op := range ops {
		op(&product)
	}

	return product
}

// FakeObservation returns models.Observation with fake data.
func FakeObservation(ops ...func(o *models.Observation)) models.Observation {
	observation := models.Observation{
		Identity:  FakeIdentity(),
		IsInStock: rand.Intn(2) == 1,
		URL:       faker.URL(),
		At:        time.Now().UTC().Truncate(time.Millisecond),
	}

	for _, op := range ops {
		op(&observation)
	}

	return observation
}

// FakeVariant returns models.Variant with fake data.
func FakeVariant(ops ...func(v *models.Variant)) models.Variant {
	variant := models.Variant{
		ID:        rand.Int63(),
		Title:     faker.Word(),
		Price:     lo.ToPtr(faker.AmountWithCurrency()),
		Available: rand.Intn(2) == 1,
		Quantity:  lo.ToPtr(rand.Intn(20)),
	}

	for _, op := range ops {
		op(&variant)
	}

	return variant
}

// FakeRestockNotification returns undelivered models.RestockNotification with fake data.
func FakeRestockNotification(ops ...func(n *models.RestockNotification)) models.RestockNotification {
	notification := models.RestockNotification{
		ID:                  rand.Int63(),
		Brand:               faker.Word(),
		ProductName:         faker.Sentence(),
		ProductURL:          lo.ToPtr(faker.URL()),
		SubscribersNotified: rand.Int31n(100) + 1,
		CreatedAt:           time.Now().UTC().Truncate(time.Millisecond),
	}

	for _, op := range ops {
		op(&notification)
	}

	return notification
}
