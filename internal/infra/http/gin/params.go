package ginserver

import (
	"errors"
	"fmt"
	"strings"

	gin "github.com/gin-gonic/gin"

	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var errBadParam = errors.New("bad parameter")

func propertyParam(c *gin.Context) (property.Key, error) {
	return property.ParseKey(c.Param("key"))
}

// houseQuery reads ?house=KEY. Unlike the path form an unknown house is bad
// input rather than a missing resource.
func houseQuery(c *gin.Context) (property.Key, error) {
	raw := strings.TrimSpace(c.Query("house"))
	if raw == "" {
		return "", fmt.Errorf("%w: house is required", errBadParam)
	}
	key, err := property.ParseKey(raw)
	if err != nil {
		return "", fmt.Errorf("%w: unknown house %q", errBadParam, raw)
	}
	return key, nil
}

func stayQuery(c *gin.Context) (daterange.DateRange, error) {
	return parseStay(c.Query("check_in"), c.Query("check_out"))
}

// parseStay parses both dates but leaves ordering alone: a reversed stay is
// rejected by the stay rules as too short, like any other short stay.
func parseStay(checkIn, checkOut string) (daterange.DateRange, error) {
	checkIn, checkOut = strings.TrimSpace(checkIn), strings.TrimSpace(checkOut)
	if checkIn == "" || checkOut == "" {
		return daterange.DateRange{}, fmt.Errorf("%w: check_in and check_out are required", errBadParam)
	}
	in, err := daterange.Parse(checkIn)
	if err != nil {
		return daterange.DateRange{}, err
	}
	out, err := daterange.Parse(checkOut)
	if err != nil {
		return daterange.DateRange{}, err
	}
	return daterange.DateRange{CheckIn: in, CheckOut: out}, nil
}

// windowQuery reads the optional ?from=&to= window, at most maxDays long.
func windowQuery(c *gin.Context, maxDays int) (*daterange.DateRange, error) {
	if maxDays <= 0 {
		maxDays = booking.DefaultMaxNights
	}
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to go together", errBadParam)
	}
	r, err := daterange.ParseRange(from, to)
	if err != nil {
		return nil, err
	}
	if r.Nights() > maxDays {
		return nil, fmt.Errorf("%w: window longer than %d days", errBadParam, maxDays)
	}
	return &r, nil
}
