package notifier

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/rs/zerolog/log"
)

type Notifier interface {
	NotifyReservation(reservation models.Reservation) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyReservation(reservation models.Reservation) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, FormatReservation(reservation))
	if err != nil {
		log.Error().Err(err).Str("reservation", reservation.Number).Msg("Failed to send discord message")
		return err
	}

	return nil
}

// FormatReservation renders the channel message for a booking.
func FormatReservation(r models.Reservation) string {
	status := "new reservation"
	if r.Status == models.ReservationCancelled {
		status = "cancelled reservation"
	}

	route := r.PickupStore
	if r.ReturnStore != "" && r.ReturnStore != r.PickupStore {
		route = fmt.Sprintf("%s → %s", r.PickupStore, r.ReturnStore)
	}

	discountStr := ""
	if r.DiscountCode != "" {
		discountStr = fmt.Sprintf("\n**Discount:** %s (-¥%d)", r.DiscountCode, r.DiscountAmount)
	}

	noteStr := ""
	if r.Notes != "" {
		noteStr = fmt.Sprintf("\n**Note:** %s", r.Notes)
	}

	names := make([]string, 0, len(r.Renters))
	for _, renter := range r.Renters {
		names = append(names, renter.Name)
	}

	return fmt.Sprintf("🎿 **Reservation %s**\n**Status:** %s\n**Applicant:** %s\n**Dates:** %s - %s (%d days)\n**Store:** %s\n**Renters:** %d (%s)\n**Total:** ¥%d%s%s",
		r.Number,
		status,
		r.Applicant.Name,
		r.StartDate.Format("2006-01-02"),
		r.EndDate.Format("2006-01-02"),
		r.RentalDays,
		route,
		len(r.Renters),
		strings.Join(names, ", "),
		r.TotalAmount,
		discountStr,
		noteStr,
	)
}
