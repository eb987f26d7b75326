package store

import (
	"fmt"
	"strings"
	"time"

	"ecoreport/internal/utils"
	"ecoreport/pkg/types"
)

const notificationTableName = "ecoreport.notifications"

var notificationColumns = utils.StructTagValues(types.Notification{})

// BuildNotifications prepares one NEW_REPORT notification per recipient.
func BuildNotifications(report *types.Report, recipientIDs []string, now time.Time) []*types.Notification {
	message := fmt.Sprintf("New %s urgency %s report in %s: %s",
		strings.ToLower(string(report.Urgency)), report.Category, report.Location, report.Title)

	out := make([]*types.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		out = append(out, &types.Notification{
			ID:        utils.NanoID(),
			AccountID: id,
			ReportID:  report.ID,
			Message:   message,
			Type:      types.NotificationTypeNewReport,
			Link:      "/issues/" + report.ID,
			CreatedAt: now,
		})
	}

	return out
}
