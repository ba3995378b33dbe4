package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pucisca/internal/app/commands"
	"pucisca/internal/app/dto"
	bookingapp "pucisca/internal/app/handlers/booking"
	"pucisca/internal/app/queries"
	"pucisca/internal/domain/property"
)

type BookingHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
}

// Quote returns 200 with the estimate, or 422 with the rejection reason.
func (h BookingHandler) Quote(c *gin.Context) {
	key, err := propertyParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	stay, err := stayQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := queries.Ask[bookingapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, bookingapp.GetQuoteQuery{Property: key, Range: stay})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(statusFor(res.Accepted), res)
}

func (h BookingHandler) CheckCombined(c *gin.Context) {
	stay, err := stayQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := queries.Ask[bookingapp.CheckCombinedQuery, dto.Combined](c.Request.Context(), h.Queries, bookingapp.CheckCombinedQuery{Range: stay})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(statusFor(res.Accepted), res)
}

type inquiryRequest struct {
	Property string `json:"property"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

func (h BookingHandler) ComposeInquiry(c *gin.Context) {
	key, err := propertyParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	h.compose(c, key, false)
}

func (h BookingHandler) ComposeCombinedInquiry(c *gin.Context) {
	h.compose(c, "", true)
}

func (h BookingHandler) compose(c *gin.Context, key property.Key, combined bool) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if combined {
		parsed, err := property.ParseKey(req.Property)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		key = parsed
	}
	stay, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := bookingapp.ComposeInquiryCommand{
		Property:        key,
		Range:           stay,
		Combined:        combined,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	res, err := commands.Dispatch[bookingapp.ComposeInquiryCommand, dto.InquiryDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func statusFor(accepted bool) int {
	if accepted {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

var _ BookingHTTP = BookingHandler{}
