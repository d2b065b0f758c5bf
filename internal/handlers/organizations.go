package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
	"github.com/joshua-takyi/eventhub/internal/services"
)

func ListOrganizations(svc *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgs, err := svc.ListOrganizations(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(orgs, len(orgs), nil))
	}
}

func AddOrganization(svc *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var org models.Organization
		if err := c.ShouldBindJSON(&org); err != nil {
			_ = c.Error(apperr.Wrap(apperr.KindValidation, "invalid organization payload", err))
			return
		}
		created, err := svc.AddOrganization(c.Request.Context(), org)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(created, "Organization saved"))
	}
}

func RemoveOrganization(svc *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RemoveOrganization(c.Request.Context(), c.Param("id")); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Organization removed"))
	}
}

func LiveEvents(ls *services.LiveEventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := ls.OrganizationEvents(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(events, len(events), nil))
	}
}

func ListInterests(is *services.InterestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		interests, err := is.ListInterests(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(interests, len(interests), nil))
	}
}

func ListRuns(rs *services.RunsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit <= 0 {
			_ = c.Error(apperr.New(apperr.KindValidation, "invalid limit parameter"))
			return
		}
		runs, err := rs.ListRuns(c.Request.Context(), c.Query("job"), limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(runs, len(runs), nil))
	}
}
