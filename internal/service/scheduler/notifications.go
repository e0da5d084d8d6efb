package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/dexhub/hr-portal/internal/mattermost"
	"github.com/dexhub/hr-portal/internal/models"
)

// buildPendingItems merges pending leave and overtime requests into reminder lines,
// oldest first. Requests whose owner has no manager are listed with an empty approver.
func buildPendingItems(
	leaves []models.LeaveRequest,
	overtime []models.OvertimeRequest,
	managerName func(id uint) string,
) []mattermost.PendingItem {
	items := make([]mattermost.PendingItem, 0, len(leaves)+len(overtime))

	for _, req := range leaves {
		summary := fmt.Sprintf("%s to %s (%g days)", req.StartDate, req.EndDate, req.TotalDays)
		if req.LeaveType != nil {
			summary = req.LeaveType.Name + " " + summary
		}
		owner, manager := people(req.User, managerName)
		items = append(items, mattermost.PendingItem{
			Kind:        models.KindLeave,
			RequestID:   req.ID,
			Owner:       owner,
			Manager:     manager,
			Summary:     summary,
			SubmittedAt: req.CreatedAt,
		})
	}

	for _, req := range overtime {
		owner, manager := people(req.User, managerName)
		items = append(items, mattermost.PendingItem{
			Kind:        models.KindOvertime,
			RequestID:   req.ID,
			Owner:       owner,
			Manager:     manager,
			Summary:     fmt.Sprintf("%s %s-%s (%.1fh)", req.Date, clock(req.StartTime), clock(req.EndTime), req.TotalHours),
			SubmittedAt: req.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items
}

func people(owner *models.User, managerName func(id uint) string) (string, string) {
	if owner == nil {
		return "unknown", ""
	}
	manager := ""
	if owner.ManagerID != nil {
		manager = managerName(*owner.ManagerID)
	}
	return owner.FullName, manager
}

// clock trims seconds from a stored HH:MM:SS value.
func clock(v string) string {
	if len(v) == 8 {
		return v[:5]
	}
	return v
}

// filterRecent drops items submitted less than minAge before now.
func filterRecent(items []mattermost.PendingItem, now time.Time, minAge time.Duration) []mattermost.PendingItem {
	var filtered []mattermost.PendingItem
	for _, item := range items {
		if now.Sub(item.SubmittedAt) >= minAge {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
