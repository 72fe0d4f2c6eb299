package validation

import (
	"testing"
	"time"

	"github.com/djsmacker01/flavour-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func london(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return loc
}

func validReservation(date string) *ReservationInput {
	return &ReservationInput{
		Name:           "Jane Smith",
		Phone:          "(020) 7946-0958",
		Date:           date,
		Time:           "19:30",
		NumberOfGuests: 4,
	}
}

func TestValidateReservation_DateBoundaries(t *testing.T) {
	now := time.Date(2026, time.March, 10, 21, 15, 0, 0, london(t))
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, now.Location())

	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"yesterday", today.AddDate(0, 0, -1).Format(DateLayout), true},
		{"today", today.Format(DateLayout), false},
		{"ninety days out", today.AddDate(0, 0, 90).Format(DateLayout), false},
		{"ninety one days out", today.AddDate(0, 0, 91).Format(DateLayout), true},
		{"not a date", "10/03/2026", true},
		{"missing", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReservation(validReservation(tt.date), now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.(Errors), "date")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateReservation_TodayFollowsLocation(t *testing.T) {
	// 23:30 UTC on 10 March is already 11 March in Auckland
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC).In(loc)

	assert.Error(t, ValidateReservation(validReservation("2026-03-10"), now))
	assert.NoError(t, ValidateReservation(validReservation("2026-03-11"), now))
}

func TestValidateReservation_TimeBoundaries(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, london(t))

	tests := []struct {
		clock   string
		wantErr bool
	}{
		{"10:59", true},
		{"11:00", false},
		{"22:00", false},
		{"22:01", true},
		{"7pm", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			in := validReservation("2026-03-12")
			in.Time = tt.clock
			err := ValidateReservation(in, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.(Errors), "time")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.clock, in.Time)
			}
		})
	}
}

func TestValidateReservation_Guests(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, london(t))

	for guests, wantErr := range map[int]bool{0: true, 1: false, 20: false, 21: true} {
		in := validReservation("2026-03-12")
		in.NumberOfGuests = guests
		err := ValidateReservation(in, now)
		if wantErr {
			assert.Error(t, err, "guests=%d", guests)
		} else {
			assert.NoError(t, err, "guests=%d", guests)
		}
	}
}

func TestValidateReservation_CollectsEveryField(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, london(t))

	err := ValidateReservation(&ReservationInput{
		Name:  "   ",
		Email: "not-an-email",
		Phone: "12345",
		Date:  "2026-03-01",
		Time:  "23:00",
	}, now)
	require.Error(t, err)

	errs := err.(Errors)
	for _, field := range []string{"name", "email", "phone", "date", "time", "number_of_guests"} {
		assert.Contains(t, errs, field)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
		ok    bool
	}{
		{"(020) 7946-0958", "02079460958", true},
		{"07700 900123", "07700900123", true},
		{"+44 7700 900123", "+447700900123", false},
		{"555-1234", "5551234", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			got, ok := NormalizePhone(tt.phone)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestValidateMenuItem(t *testing.T) {
	in := &MenuItemInput{Name: "  Tiramisu  ", Price: models.MustMoney("8.99"), Category: models.CategoryDessert}
	require.NoError(t, ValidateMenuItem(in))
	assert.Equal(t, "Tiramisu", in.Name)

	in = &MenuItemInput{Name: "Water", Price: models.MustMoney("1.00")}
	require.NoError(t, ValidateMenuItem(in))
	assert.Equal(t, models.CategoryMain, in.Category, "category defaults to main")

	err := ValidateMenuItem(&MenuItemInput{Name: " ", Price: models.MustMoney("0"), Category: "soup"})
	require.Error(t, err)
	errs := err.(Errors)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "category")

	err = ValidateMenuItem(&MenuItemInput{Name: "Refund", Price: models.MustMoney("-2.50"), Category: models.CategoryMain})
	require.Error(t, err)
	assert.Contains(t, err.(Errors), "price")
}

func TestValidateMenuItem_Price(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		wantErr string
	}{
		{"whole pounds", "12", ""},
		{"trailing zeros", "8.9900", ""},
		{"largest price", "99999999.99", ""},
		{"rounds to zero", "0.004", "Price must have at most 2 decimal places."},
		{"sub-penny", "8.999", "Price must have at most 2 decimal places."},
		{"too large", "100000000.00", "Price must be at most 99999999.99."},
		{"zero", "0.00", "Price must be greater than zero."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &MenuItemInput{Name: "Espresso", Price: models.MustMoney(tt.price), Category: models.CategoryDrink}
			err := ValidateMenuItem(in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.(Errors)["price"])
		})
	}
}

func TestValidateCartQuantity(t *testing.T) {
	assert.Error(t, ValidateCartQuantity(0))
	assert.NoError(t, ValidateCartQuantity(1))
	assert.NoError(t, ValidateCartQuantity(10))
	assert.Error(t, ValidateCartQuantity(11))
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Err())

	errs.Add("phone", "first")
	errs.Add("phone", "second")
	errs.Add("date", "bad date")
	assert.Equal(t, "date: bad date; phone: first", errs.Error())
	assert.Error(t, errs.Err())
}
