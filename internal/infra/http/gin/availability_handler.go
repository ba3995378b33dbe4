package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pucisca/internal/app/dto"
	availabilityapp "pucisca/internal/app/handlers/availability"
	"pucisca/internal/app/queries"
)

// MaxWindowDays caps the ?from=&to= window of CombinedBlocked; zero means
// booking.DefaultMaxNights.
type AvailabilityHandler struct {
	Queries       queries.Bus
	MaxWindowDays int
}

// WorkerBlocked mirrors the availability worker contract so existing widgets
// can point at this service unchanged.
func (h AvailabilityHandler) WorkerBlocked(c *gin.Context) {
	key, err := houseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := queries.Ask[availabilityapp.GetBlockedDatesQuery, dto.BlockedDates](c.Request.Context(), h.Queries, availabilityapp.GetBlockedDatesQuery{Property: key})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": res.Blocked})
}

func (h AvailabilityHandler) Blocked(c *gin.Context) {
	key, err := propertyParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := queries.Ask[availabilityapp.GetBlockedDatesQuery, dto.BlockedDates](c.Request.Context(), h.Queries, availabilityapp.GetBlockedDatesQuery{Property: key})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h AvailabilityHandler) CombinedBlocked(c *gin.Context) {
	window, err := windowQuery(c, h.MaxWindowDays)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := queries.Ask[availabilityapp.GetCombinedBlockedDatesQuery, dto.CombinedBlockedDates](c.Request.Context(), h.Queries, availabilityapp.GetCombinedBlockedDatesQuery{Window: window})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
