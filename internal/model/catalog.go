package model

import (
	"math"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"catalogapi/internal/apperror"
)

// DateLayout is the wire and filter format for calendar dates.
const DateLayout = "2006-01-02"

// Region is an administrative area publishers are registered in.
type Region struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func (r *Region) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 5)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	))
}

// Patron is a library member (a "book lover" on the wire).
type Patron struct {
	ID            int64   `json:"id_book_lover"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	MiddleName    *string `json:"middle_name"`
	Birthday      *Date   `json:"birthday"`
	DateOfJoining *Date   `json:"date_of_joining"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
}

var phonePattern = regexp.MustCompile(`^[0-9+()\- ]{3,}$`)

func (p *Patron) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(p,
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.MiddleName, validation.Length(0, 255)),
		validation.Field(&p.Address, validation.Length(0, 255)),
		validation.Field(&p.Phone, validation.Length(0, 255), validation.Match(phonePattern)),
	))
}

// Publisher is a publishing house located in a Region.
type Publisher struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RegionID int64  `json:"region"`
}

func (p *Publisher) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.RegionID, validation.Required, validation.Min(int64(1))),
	))
}

// Book is a catalog title with its physical volumes.
type Book struct {
	ID            int64    `json:"id_book"`
	Title         string   `json:"title"`
	PublisherID   *int64   `json:"publisher"`
	YearOfRelease *int     `json:"year_of_release"`
	CoverPhoto    *string  `json:"cover_photo"`
	Volumes       []Volume `json:"volumes"`
}

func (b *Book) Validate() error {
	err := validation.ValidateStruct(b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&b.PublisherID, validation.Min(int64(1))),
		validation.Field(&b.YearOfRelease, validation.Min(0), validation.Max(math.MaxInt32)),
		validation.Field(&b.Volumes),
	)
	return apperror.FromValidation(err)
}

// Volume is one physical part of a Book.
type Volume struct {
	ID            int64 `json:"id_volume"`
	BookID        int64 `json:"-"`
	VolumeNumber  int   `json:"volume_number"`
	NumberOfPages int   `json:"number_of_pages"`
}

func (v Volume) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.VolumeNumber, validation.Required, validation.Min(1), validation.Max(math.MaxInt32)),
		validation.Field(&v.NumberOfPages, validation.Required, validation.Min(1), validation.Max(math.MaxInt32)),
	)
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses s in DateLayout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: DateLayout, Value: s}
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
