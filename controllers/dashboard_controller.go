package controller

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"leadboard/models"
	"leadboard/stats"
	"leadboard/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

// ActivityDashboard is the daily breakdown plus the aggregated totals for one
// unit and month.
type ActivityDashboard struct {
	Daily  []stats.DailyStat `json:"daily"`
	Totals stats.Totals      `json:"totals"`
}

// ScopeStats is one row of the commercial tables: a grouping (unit, user or
// lead source) with its aggregated totals.
type ScopeStats struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Totals stats.Totals `json:"totals"`
}

// CountLeadsCreatedBetween implements stats.LeadCounter against the store.
func (dc *DashboardController) CountLeadsCreatedBetween(ctx context.Context, unitID uint, start, end time.Time) (int64, error) {
	var count int64
	err := dc.DB.WithContext(ctx).Model(&models.Lead{}).
		Where("unit_id = ? AND active = ? AND created_at BETWEEN ? AND ?", unitID, true, start, end).
		Count(&count).Error
	return count, err
}

// GetActivityDashboard returns per-day counters for the requested month and
// their aggregation. Rates come from the summed totals, never from averaging
// per-day rates.
func (dc *DashboardController) GetActivityDashboard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	unitID := utils.ParseUint(c.Query("unit_id"))
	if unitID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unit_id is required", nil)
	}
	ok, err := userHasUnit(dc.DB, user, unitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	now := time.Now()
	month, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	if month < 1 || month > 12 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "month must be between 1 and 12", nil)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var daily []stats.DailyStat
	for day := monthStart; day.Before(monthEnd); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)

		stat := stats.DailyStat{Date: day}
		stat.NewClients = int(dc.countLeads(unitID, day, dayEnd))
		stat.ContactAttempts = int(dc.countActivities(unitID, models.ActivityContactAttempt, day, dayEnd))
		stat.EffectiveContacts = int(dc.countActivities(unitID, models.ActivityEffectiveContact, day, dayEnd))
		stat.ScheduledVisits = int(dc.countActivities(unitID, models.ActivityScheduling, day, dayEnd))
		stat.AwaitingVisits = int(dc.countVisitsExpected(unitID, day, dayEnd))
		stat.CompletedVisits = int(dc.countActivities(unitID, models.ActivityAttendance, day, dayEnd))
		stat.Enrollments = int(dc.countActivities(unitID, models.ActivityEnrollment, day, dayEnd))
		daily = append(daily, stat)
	}

	return c.JSON(utils.SuccessResponse(ActivityDashboard{
		Daily:  daily,
		Totals: stats.Aggregate(daily),
	}))
}

// GetLeadsStats returns the 1/3/6/12 month lead counts with the prior-year
// comparison for each window.
func (dc *DashboardController) GetLeadsStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	unitID := utils.ParseUint(c.Query("unit_id"))
	if unitID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unit_id is required", nil)
	}
	ok, err := userHasUnit(dc.DB, user, unitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	result, err := stats.CompareAllWindows(c.Context(), dc, unitID, time.Now())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute lead stats", err)
	}

	return c.JSON(utils.SuccessResponse(result))
}

// GetCommercialStats returns month-scoped totals grouped per unit, per
// consultant and per lead source.
func (dc *DashboardController) GetCommercialStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	now := time.Now()
	month, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	if month < 1 || month > 12 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "month must be between 1 and 12", nil)
	}

	unitIDs, err := userUnitIDs(dc.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	var units []models.Unit
	if err := dc.DB.Where("id IN ? AND active = ?", unitIDs, true).Order("name").Find(&units).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch units", err)
	}

	unitStats := make([]ScopeStats, 0, len(units))
	for _, unit := range units {
		totals := dc.totalsForScope(start, end,
			"unit_id = ?", []interface{}{unit.ID})
		unitStats = append(unitStats, ScopeStats{
			ID:     strconv.FormatUint(uint64(unit.ID), 10),
			Name:   unit.Name,
			Totals: totals,
		})
	}

	// Consultants attached to the visible units
	var consultants []models.User
	if err := dc.DB.Joins("JOIN unit_users ON unit_users.user_id = users.id").
		Where("unit_users.unit_id IN ? AND unit_users.active = ?", unitIDs, true).
		Distinct("users.*").
		Find(&consultants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch consultants", err)
	}

	userStats := make([]ScopeStats, 0, len(consultants))
	for _, consultant := range consultants {
		totals := dc.totalsForScope(start, end,
			"unit_id IN ? AND created_by = ?", []interface{}{unitIDs, consultant.ID})
		userStats = append(userStats, ScopeStats{
			ID:     strconv.FormatUint(uint64(consultant.ID), 10),
			Name:   consultant.FullName,
			Totals: totals,
		})
	}

	// Lead sources seen in the visible units
	var sources []string
	if err := dc.DB.Model(&models.Lead{}).
		Where("unit_id IN ? AND lead_source <> ''", unitIDs).
		Distinct().
		Order("lead_source").
		Pluck("lead_source", &sources).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead sources", err)
	}

	sourceStats := make([]ScopeStats, 0, len(sources))
	for _, source := range sources {
		totals := dc.totalsForSource(start, end, unitIDs, source)
		sourceStats = append(sourceStats, ScopeStats{
			ID:     source,
			Name:   source,
			Totals: totals,
		})
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"unit_stats":   unitStats,
		"user_stats":   userStats,
		"source_stats": sourceStats,
	}))
}

// countLeads counts leads registered in [start, end).
func (dc *DashboardController) countLeads(unitID uint, start, end time.Time) int64 {
	var count int64
	dc.DB.Model(&models.Lead{}).
		Where("unit_id = ? AND active = ? AND created_at >= ? AND created_at < ?", unitID, true, start, end).
		Count(&count)
	return count
}

// countActivities counts active activities of one type created in [start, end).
func (dc *DashboardController) countActivities(unitID uint, activityType models.ActivityType, start, end time.Time) int64 {
	var count int64
	dc.DB.Model(&models.Activity{}).
		Where("unit_id = ? AND activity_type = ? AND active = ? AND created_at >= ? AND created_at < ?",
			unitID, activityType, true, start, end).
		Count(&count)
	return count
}

// countVisitsExpected counts scheduling activities whose visit slot falls in
// [start, end) — the visits the unit was waiting for that day.
func (dc *DashboardController) countVisitsExpected(unitID uint, start, end time.Time) int64 {
	var count int64
	dc.DB.Model(&models.Activity{}).
		Where("unit_id = ? AND activity_type = ? AND active = ? AND scheduled_at >= ? AND scheduled_at < ?",
			unitID, models.ActivityScheduling, true, start, end).
		Count(&count)
	return count
}

// totalsForScope aggregates one month for an arbitrary lead/activity scope.
func (dc *DashboardController) totalsForScope(start, end time.Time, condition string, args []interface{}) stats.Totals {
	day := stats.DailyStat{}

	var leadCount int64
	dc.DB.Model(&models.Lead{}).
		Where(condition, args...).
		Where("active = ? AND created_at >= ? AND created_at < ?", true, start, end).
		Count(&leadCount)
	day.NewClients = int(leadCount)

	countType := func(t models.ActivityType) int {
		var count int64
		dc.DB.Model(&models.Activity{}).
			Where(condition, args...).
			Where("activity_type = ? AND active = ? AND created_at >= ? AND created_at < ?", t, true, start, end).
			Count(&count)
		return int(count)
	}
	day.ContactAttempts = countType(models.ActivityContactAttempt)
	day.EffectiveContacts = countType(models.ActivityEffectiveContact)
	day.ScheduledVisits = countType(models.ActivityScheduling)
	day.CompletedVisits = countType(models.ActivityAttendance)
	day.Enrollments = countType(models.ActivityEnrollment)

	var awaiting int64
	dc.DB.Model(&models.Activity{}).
		Where(condition, args...).
		Where("activity_type = ? AND active = ? AND scheduled_at >= ? AND scheduled_at < ?",
			models.ActivityScheduling, true, start, end).
		Count(&awaiting)
	day.AwaitingVisits = int(awaiting)

	return stats.Aggregate([]stats.DailyStat{day})
}

// totalsForSource aggregates one month for a single lead source. Activities
// carry no source themselves, so they are joined through their lead.
func (dc *DashboardController) totalsForSource(start, end time.Time, unitIDs []uint, source string) stats.Totals {
	day := stats.DailyStat{}

	var leadCount int64
	dc.DB.Model(&models.Lead{}).
		Where("unit_id IN ? AND lead_source = ? AND active = ? AND created_at >= ? AND created_at < ?",
			unitIDs, source, true, start, end).
		Count(&leadCount)
	day.NewClients = int(leadCount)

	countType := func(t models.ActivityType) int {
		var count int64
		dc.DB.Model(&models.Activity{}).
			Joins("JOIN leads ON leads.id = activities.lead_id").
			Where("activities.unit_id IN ? AND leads.lead_source = ? AND activities.activity_type = ? AND activities.active = ? AND activities.created_at >= ? AND activities.created_at < ?",
				unitIDs, source, t, true, start, end).
			Count(&count)
		return int(count)
	}
	day.ContactAttempts = countType(models.ActivityContactAttempt)
	day.EffectiveContacts = countType(models.ActivityEffectiveContact)
	day.ScheduledVisits = countType(models.ActivityScheduling)
	day.CompletedVisits = countType(models.ActivityAttendance)
	day.Enrollments = countType(models.ActivityEnrollment)

	var awaiting int64
	dc.DB.Model(&models.Activity{}).
		Joins("JOIN leads ON leads.id = activities.lead_id").
		Where("activities.unit_id IN ? AND leads.lead_source = ? AND activities.activity_type = ? AND activities.active = ? AND activities.scheduled_at >= ? AND activities.scheduled_at < ?",
			unitIDs, source, models.ActivityScheduling, true, start, end).
		Count(&awaiting)
	day.AwaitingVisits = int(awaiting)

	return stats.Aggregate([]stats.DailyStat{day})
}
