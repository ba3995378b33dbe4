package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pucisca/internal/app/dto"
	pricingapp "pucisca/internal/app/handlers/pricing"
	"pucisca/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
}

func (h PricingHandler) Rates(c *gin.Context) {
	key, err := propertyParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := queries.Ask[pricingapp.GetRatesQuery, dto.Rates](c.Request.Context(), h.Queries, pricingapp.GetRatesQuery{Property: key})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ PricingHTTP = PricingHandler{}
