package storage

import (
	"github.com/MichalMitros/restock-monitor/internal/platform/models"

	pgmodels "github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/model"
)

//go:generate jet -dsn=${DATABASE_URL} -schema=public -path=./gen

func toDBRun(run *models.Run) *pgmodels.MonitorRuns {
	return &pgmodels.MonitorRuns{
		ID:                  int32(run.ID),
		FinishedAt:          run.FinishedAt,
		Success:             run.IsSuccess,
		StatusMessage:       run.StatusMessage,
		CheckedProducts:     run.CheckedProducts,
		InStockProducts:     run.InStockProducts,
		SkippedProducts:     run.SkippedProducts,
		FailedProducts:      run.FailedProducts,
		RestocksDetected:    run.RestocksDetected,
		BrandsNotified:      run.BrandsNotified,
		FailedNotifications: run.FailedNotifications,
	}
}

// FromDBRun converts postgres run model into models.Run.
func FromDBRun(run *pgmodels.MonitorRuns) *models.Run {
	return &models.Run{
		ID:                  int(run.ID),
		CreatedAt:           run.CreatedAt,
		FinishedAt:          run.FinishedAt,
		IsSuccess:           run.Success,
		StatusMessage:       run.StatusMessage,
		CheckedProducts:     run.CheckedProducts,
		InStockProducts:     run.InStockProducts,
		SkippedProducts:     run.SkippedProducts,
		FailedProducts:      run.FailedProducts,
		RestocksDetected:    run.RestocksDetected,
		BrandsNotified:      run.BrandsNotified,
		FailedNotifications: run.FailedNotifications,
	}
}

// ToDBStock converts models.StockState into postgres product stock model.
func ToDBStock(state *models.StockState) *pgmodels.ProductStock {
	return &pgmodels.ProductStock{
		ID:                    state.ID,
		Brand:                 state.Identity.Brand,
		ProductName:           state.Identity.ProductName,
		IsInStock:             state.IsInStock,
		LastChecked:           state.LastChecked,
		StockChangeDetectedAt: state.StockChangeDetectedAt,
		StockURL:              state.StockURL,
	}
}

// FromDBStock converts postgres product stock model into models.StockState.
func FromDBStock(stock *pgmodels.ProductStock) *models.StockState {
	return &models.StockState{
		ID: stock.ID,
		Identity: models.ProductIdentity{
			Brand:       stock.Brand,
			ProductName: stock.ProductName,
		},
		IsInStock:             stock.IsInStock,
		LastChecked:           stock.LastChecked,
		StockChangeDetectedAt: stock.StockChangeDetectedAt,
		StockURL:              stock.StockURL,
	}
}

// FromDBNotification converts postgres restock notification model into models.RestockNotification.
func FromDBNotification(notification *pgmodels.RestockNotifications) models.RestockNotification {
	return models.RestockNotification{
		ID:                  notification.ID,
		Brand:               notification.Brand,
		ProductName:         notification.ProductName,
		ProductURL:          notification.ProductURL,
		SubscribersNotified: notification.SubscribersNotified,
		EmailSent:           notification.EmailSent,
		SentAt:              notification.SentAt,
		CreatedAt:           notification.CreatedAt,
	}
}
