package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Marketplace: MarketplaceConfig{
			BaseURL:         "https://funpay.com",
			UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) marketbot/0.3",
			RequestTimeoutS: 10,
			PollIntervalS:   6,
		},
		AutoResponse: AutoResponseConfig{
			Enabled: false,
			Commands: map[string]CommandConfig{
				"!commands": {
					Response: "Available commands: !commands",
				},
			},
		},
		AutoDelivery: AutoDeliveryConfig{
			Enabled:   false,
			RulesPath: "~/.marketbot/delivery.yaml",
		},
		AutoRestore: AutoRestoreConfig{
			Enabled: false,
		},
		Raise: RaiseConfig{
			Enabled: false,
		},
		Notifications: NotificationsConfig{
			Enabled:  true,
			NewOrder: true,
			Delivery: true,
			Raise:    true,
			Command:  false,
		},
		Telegram: TelegramConfig{
			Enabled: false,
		},
		Discord: DiscordConfig{
			Enabled: false,
		},
		Slack: SlackConfig{
			Enabled: false,
		},
		Inventory: InventoryConfig{
			DBPath: "~/.marketbot/inventory.db",
		},
	}
}
