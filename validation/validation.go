package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/djsmacker01/flavour-api/models"
	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// MaxAdvanceDays is how far ahead a table can be booked
	MaxAdvanceDays = 90
	MinGuests      = 1
	MaxGuests      = 20
	MinPhoneDigits = 10

	MinCartQuantity = 1
	MaxCartQuantity = 10
)

var (
	openingMinutes = 11 * 60
	closingMinutes = 22 * 60

	// maxPrice is the largest amount a decimal(10,2) price column holds
	maxPrice = models.MustMoney("99999999.99")
)

var validate = validator.New()

// Errors maps a field name to a user-facing message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

// Add records the first message for a field
func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Err returns nil when nothing was recorded
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// MenuItemInput is the editable part of a menu item
type MenuItemInput struct {
	Name        string
	Description string
	Price       models.Money
	Category    string
}

// ValidateMenuItem trims the name in place and checks price and category
func ValidateMenuItem(in *MenuItemInput) error {
	errs := Errors{}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		errs.Add("name", "Name cannot be empty.")
	} else if len(in.Name) > 200 {
		errs.Add("name", "Name must be at most 200 characters.")
	}

	switch {
	case !in.Price.IsPositive():
		errs.Add("price", "Price must be greater than zero.")
	case !in.Price.Equal(in.Price.Round(2)):
		errs.Add("price", "Price must have at most 2 decimal places.")
	case in.Price.GreaterThan(maxPrice.Decimal):
		errs.Add("price", "Price must be at most "+maxPrice.String()+".")
	}

	if in.Category == "" {
		in.Category = models.CategoryMain
	}
	if !models.IsValidCategory(in.Category) {
		errs.Add("category", fmt.Sprintf("Category must be one of %s.", strings.Join(models.Categories, ", ")))
	}

	return errs.Err()
}

// ReservationInput is the customer-editable part of a reservation
type ReservationInput struct {
	Name            string
	Email           string
	Phone           string
	Date            string
	Time            string
	NumberOfGuests  int
	SpecialRequests string
}

// ValidateReservation checks a booking against the calendar of now's
// location. Name and email are trimmed, date and time are normalised.
func ValidateReservation(in *ReservationInput, now time.Time) error {
	errs := Errors{}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		errs.Add("name", "Name is required.")
	} else if len(in.Name) > 100 {
		errs.Add("name", "Name must be at most 100 characters.")
	}

	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Var(in.Email, "omitempty,email"); err != nil {
		errs.Add("email", "Please enter a valid email address.")
	}

	if _, ok := NormalizePhone(in.Phone); !ok {
		errs.Add("phone", "Please enter a valid phone number.")
	}

	if date, msg := validateDate(in.Date, now); msg != "" {
		errs.Add("date", msg)
	} else {
		in.Date = date
	}

	if clock, msg := validateTime(in.Time); msg != "" {
		errs.Add("time", msg)
	} else {
		in.Time = clock
	}

	if in.NumberOfGuests < MinGuests || in.NumberOfGuests > MaxGuests {
		errs.Add("number_of_guests", fmt.Sprintf("Number of guests must be between %d and %d.", MinGuests, MaxGuests))
	}

	return errs.Err()
}

// ValidateCartQuantity bounds the quantity accepted when adding to a cart
func ValidateCartQuantity(quantity int) error {
	if quantity < MinCartQuantity || quantity > MaxCartQuantity {
		return Errors{"quantity": fmt.Sprintf("Quantity must be between %d and %d.", MinCartQuantity, MaxCartQuantity)}
	}
	return nil
}

// NormalizePhone strips common separators and reports whether the rest is
// a plausible phone number
func NormalizePhone(phone string) (string, bool) {
	cleaned := strings.NewReplacer("-", "", " ", "", "(", "", ")", "").Replace(phone)
	if len(cleaned) < MinPhoneDigits {
		return cleaned, false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return cleaned, false
		}
	}
	return cleaned, true
}

func validateDate(value string, now time.Time) (string, string) {
	if value == "" {
		return "", "Date is required."
	}

	loc := now.Location()
	date, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return "", "Date must be in YYYY-MM-DD format."
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if date.Before(today) {
		return "", "Reservation date cannot be in the past."
	}
	if date.After(today.AddDate(0, 0, MaxAdvanceDays)) {
		return "", "Reservations can only be made up to 3 months in advance."
	}

	return date.Format(DateLayout), ""
}

func validateTime(value string) (string, string) {
	if value == "" {
		return "", "Time is required."
	}

	clock, err := time.Parse(TimeLayout, value)
	if err != nil {
		return "", "Time must be in HH:MM format."
	}

	minutes := clock.Hour()*60 + clock.Minute()
	if minutes < openingMinutes || minutes > closingMinutes {
		return "", "Reservations can only be made between 11:00 AM and 10:00 PM."
	}

	return clock.Format(TimeLayout), ""
}
