package command

import (
	"fmt"
	"strings"

	"github.com/duong2179/slack-hodor/internal/civiltime"
	"github.com/duong2179/slack-hodor/internal/models"
)

const (
	msgNotFound      = "Opps!!! Command not found. Supported commands:\n"
	msgGreeting      = "Hi there, I am here to help you reserve meeting rooms\nSupported commands:\n"
	msgNoRooms       = "No meeting rooms added yet."
	msgRooms         = "Meeting rooms:\n"
	msgNoReserves    = "No reserves made yet."
	msgReserves      = "Reserves:\n"
	msgAddDenied     = "You don't have permission to add new meeting rooms.\nPlease join %s first!"
	msgRemoveDenied  = "You don't have permission to remove meeting rooms.\nPlease join %s first!"
	msgRoomExists    = "%s already existed. Please double-check!"
	msgRoomMissing   = "%s NOT existed. Please double-check!"
	msgAdded         = "Successfully added. Congrats!!!\n"
	msgRemoved       = "Successfully removed. Congrats!!!\n"
	msgInvalidRange  = "Invalid date, start / end. Please double-check!"
	msgInvalidStart  = "Invalid date, start. Please double-check!"
	msgTooLate       = "Too late for reservation. Please reserve at least %s in advance!"
	msgTooEarly      = "Too early for reservation. Please reserve at most %s in future!"
	msgTooShort      = "Too short time slot. Please reserve a time slot of at least %s!"
	msgTooLong       = "Too long time slot. Please reserve a time slot of at most %s!"
	msgOccupied      = "The time slot has been occupied. Please choose another room / time slot!\n"
	msgReserved      = "Successfully reserved. Congrats!!!\n"
	msgSlotMissing   = "Target room & time slot NOT existed. Please double-check!"
	msgCancelDenied  = "You don't have permission to cancel the reservation."
	msgCanceled      = "Successfully canceled. Congrats!!!\n"
	msgInternalError = "Something went wrong. Please try again later."
)

func tripleQuote(msg string) string {
	return "```" + msg + "```"
}

// HelpText lists the supported commands addressed to botName.
func HelpText(botName string) string {
	lines := []string{
		"help",
		"rooms",
		"reserves",
		"add <room>",
		"remove <room>",
		"reserve <room> <yyyy-mm-dd> <HH:MM> <HH:MM>",
		"cancel <room> <yyyy-mm-dd> <HH:MM>",
	}
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "@%s %s\n", botName, line)
	}
	return tripleQuote(b.String())
}

// FormatReservation renders r in zone. The displayed end is one second past
// the stored inclusive end so a 10:00 to 11:00 booking reads "10:00 ~ 11:00".
func FormatReservation(r *models.Reservation, zone civiltime.Zone) string {
	verb, by, at := "reserved", r.ReservedBy, r.ReservedAt
	if r.Canceled() {
		verb, by, at = "canceled", r.CanceledBy, r.CanceledAt
	}
	return fmt.Sprintf("[%s, %s %s ~ %s] %s by <@%s> at %s",
		r.Room,
		zone.FromEpoch(r.Start, civiltime.DateLayout),
		zone.FromEpoch(r.Start, civiltime.ClockLayout),
		zone.FromEpoch(r.End+1, civiltime.ClockLayout),
		verb,
		by,
		zone.FromEpoch(at, civiltime.StampLayout))
}

func formatRooms(rooms []string) string {
	var b strings.Builder
	for _, room := range rooms {
		b.WriteString(room)
		b.WriteByte('\n')
	}
	return tripleQuote(b.String())
}

func formatReservations(reservations []*models.Reservation, zone civiltime.Zone) string {
	var b strings.Builder
	for _, r := range reservations {
		b.WriteString(FormatReservation(r, zone))
		b.WriteByte('\n')
	}
	return tripleQuote(b.String())
}

// humanDuration spells a limit the way replies phrase it: "5 mins",
// "12 hours", "7 days".
func humanDuration(seconds int64) string {
	switch {
	case seconds >= 86400 && seconds%86400 == 0:
		return plural(seconds/86400, "day")
	case seconds >= 3600 && seconds%3600 == 0:
		return plural(seconds/3600, "hour")
	case seconds >= 60 && seconds%60 == 0:
		return plural(seconds/60, "min")
	}
	return plural(seconds, "second")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
