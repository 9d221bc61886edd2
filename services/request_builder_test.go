package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-collection/models"
)

func TestBuildPaymentRequest_RejectsInvalidAmount(t *testing.T) {
	for _, serviceType := range []models.ServiceType{
		models.ServiceDynamicQR,
		models.ServicePaymentLink,
		models.ServiceCollectCall,
	} {
		for _, amount := range []decimal.Decimal{
			{}, // absent
			decimal.NewFromInt(0),
			decimal.NewFromInt(-100),
		} {
			_, err := BuildPaymentRequest(&PaymentForm{
				ServiceType: serviceType,
				Amount:      amount,
			})

			var ve *ValidationError
			require.ErrorAs(t, err, &ve, "service %s amount %s", serviceType, amount)
			assert.Equal(t, "amount", ve.Field)
		}
	}
}

func TestBuildPaymentRequest_PaymentLinkRequiresMobile(t *testing.T) {
	_, err := BuildPaymentRequest(&PaymentForm{
		ServiceType: models.ServicePaymentLink,
		Amount:      decimal.NewFromInt(500),
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "mobile_number", ve.Field)

	req, err := BuildPaymentRequest(&PaymentForm{
		ServiceType:  models.ServicePaymentLink,
		Amount:       decimal.NewFromInt(500),
		MobileNumber: " 9999999999 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "9999999999", req.MobileNumber)
}

func TestBuildPaymentRequest_CollectCallRequiresInstrument(t *testing.T) {
	cases := []PaymentForm{
		{
			ServiceType:         models.ServiceCollectCall,
			Amount:              decimal.NewFromInt(500),
			InstrumentReference: "payer@upi",
		},
		{
			ServiceType:    models.ServiceCollectCall,
			Amount:         decimal.NewFromInt(500),
			InstrumentType: models.InstrumentVPA,
		},
	}

	for _, form := range cases {
		_, err := BuildPaymentRequest(&form)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "instrument", ve.Field)
	}

	req, err := BuildPaymentRequest(&PaymentForm{
		ServiceType:         models.ServiceCollectCall,
		Amount:              decimal.NewFromInt(500),
		InstrumentType:      models.InstrumentVPA,
		InstrumentReference: "payer@upi",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InstrumentVPA, req.InstrumentType)
	assert.Equal(t, "payer@upi", req.InstrumentReference)
}

func TestBuildPaymentRequest_StripsInstrumentFieldsForOtherTypes(t *testing.T) {
	req, err := BuildPaymentRequest(&PaymentForm{
		ServiceType:         models.ServiceDynamicQR,
		Amount:              decimal.NewFromInt(500),
		InstrumentType:      models.InstrumentMobile,
		InstrumentReference: "9999999999",
		CaseID:              "42",
	})
	require.NoError(t, err)

	assert.Empty(t, req.InstrumentType)
	assert.Empty(t, req.InstrumentReference)
	assert.Equal(t, "42", req.CaseID)
}

func TestBuildPaymentRequest_UnknownServiceType(t *testing.T) {
	_, err := BuildPaymentRequest(&PaymentForm{
		ServiceType: "CASH",
		Amount:      decimal.NewFromInt(500),
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "service_type", ve.Field)
}
