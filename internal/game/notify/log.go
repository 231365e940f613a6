package notify

import "go.uber.org/zap"

// LogObserver writes every notification to a zap logger. It is the headless
// stand-in for a game log window.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates an observer logging at Info level.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger.Named("game")}
}

// Notify implements Observer.
func (o *LogObserver) Notify(n Notification) {
	fields := make([]zap.Field, 0, 8)
	if n.Player != nil {
		fields = append(fields, zap.Int("player_id", n.Player.ID), zap.String("player", n.Player.Name))
	}
	if n.Target != nil {
		fields = append(fields, zap.Int("target_id", n.Target.ID), zap.String("target", n.Target.Name))
	}
	if n.FromZone != nil {
		fields = append(fields, zap.String("from_zone", n.FromZone.Name))
	}
	if n.Zone != nil {
		fields = append(fields, zap.String("zone", n.Zone.Name), zap.Int("zone_size", n.Zone.CardCount))
	}
	if n.Card != nil {
		fields = append(fields, zap.Int("card_id", n.Card.ID))
		if n.Card.Name != "" {
			fields = append(fields, zap.String("card", n.Card.Name))
		}
	}
	if n.Counter != nil {
		fields = append(fields, zap.String("counter", n.Counter.Name), zap.Int("value", n.Counter.Value))
	}

	switch n.Kind {
	case KindSay, KindSpectatorJoined, KindSpectatorLeft:
		fields = append(fields, zap.String("text", n.Text))
	case KindPlayerRenamed:
		fields = append(fields, zap.String("old_name", n.Text), zap.String("new_name", n.Value))
	case KindCardAttrSet:
		fields = append(fields, zap.String("attr", n.Attr), zap.String("attr_value", n.Value))
	case KindRollDie:
		fields = append(fields, zap.Int("sides", n.Amount), zap.Int("roll", n.Amount2))
	case KindDraw, KindZoneDumped:
		fields = append(fields, zap.Int("count", n.Amount))
	case KindZonesSetUp:
		fields = append(fields, zap.Int("deck", n.Amount), zap.Int("sideboard", n.Amount2))
	case KindPhaseChanged:
		fields = append(fields, zap.Int("phase", n.Phase))
	case KindPlayerListReceived:
		fields = append(fields, zap.Strings("players", n.Names))
	}

	o.logger.Info(string(n.Kind), fields...)
}
