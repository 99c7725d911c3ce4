package server

import (
	"net/http"
	"os"

	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) refreshCountries(c *gin.Context) {
	result, err := s.refresh.Refresh(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listCountries(c *gin.Context) {
	records, err := s.country.List(c.Request.Context(), domain.ListCountriesRequest{
		Region:       c.Query("region"),
		CurrencyCode: c.Query("currency"),
		SortBy:       c.Query("sort"),
		Order:        c.Query("order"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) getCountry(c *gin.Context) {
	record, err := s.country.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) deleteCountry(c *gin.Context) {
	if err := s.country.DeleteByName(c.Request.Context(), c.Param("name")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) status(c *gin.Context) {
	meta, err := s.country.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) summaryImage(c *gin.Context) {
	path := s.cfg.SummaryPath
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			AbortWithError(c, domain.ErrNotFound)
			return
		}
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Type", "image/png")
	c.File(path)
}
