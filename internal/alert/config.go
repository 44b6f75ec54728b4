package alert

import "github.com/zulandar/textline/internal/config"

// FromConfig builds a Notifier for every configured destination. With none
// configured it returns Nop.
func FromConfig(cfg config.AlertsConfig) (Notifier, error) {
	var targets Multi

	if cfg.SlackWebhookURL != "" {
		s, err := NewSlack(cfg.SlackWebhookURL)
		if err != nil {
			return nil, err
		}
		targets = append(targets, s)
	}
	if cfg.DiscordToken != "" {
		d, err := NewDiscord(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return nil, err
		}
		targets = append(targets, d)
	}

	if len(targets) == 0 {
		return Nop{}, nil
	}
	return targets, nil
}
