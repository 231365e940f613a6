package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"go.uber.org/zap"
)

// Setup runs the pre-game handshake: upload the deck, then report ready.
// Open only queues a request, so it can be called from the dispatch path;
// Run performs the sends on its own goroutine.
type Setup struct {
	sender    protocol.Sender
	deck      []string
	spectator bool
	logger    *zap.Logger
	requests  chan struct{}
}

// NewSetup creates a setup flow. Spectators never submit a deck or ready up.
func NewSetup(sender protocol.Sender, deck []string, spectator bool, logger *zap.Logger) *Setup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Setup{
		sender:    sender,
		deck:      append([]string(nil), deck...),
		spectator: spectator,
		logger:    logger,
		requests:  make(chan struct{}, 1),
	}
}

// Open requests a handshake. Requests that arrive while one is pending coalesce.
func (s *Setup) Open() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

// Run serves handshake requests until ctx is cancelled.
func (s *Setup) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.requests:
			if err := s.handshake(ctx); err != nil {
				s.logger.Warn("game setup failed", zap.Error(err))
			}
		}
	}
}

func (s *Setup) handshake(ctx context.Context) error {
	if s.spectator {
		s.logger.Debug("spectating, skipping deck submission")
		return nil
	}
	if err := s.sender.Send(ctx, protocol.SubmitDeck(s.deck)); err != nil {
		return fmt.Errorf("submit deck: %w", err)
	}
	if err := s.sender.Send(ctx, protocol.ReadyStart()); err != nil {
		return fmt.Errorf("ready start: %w", err)
	}
	s.logger.Info("deck submitted", zap.Int("cards", len(s.deck)))
	return nil
}

// LoadDeck reads a deck list from path. See ParseDeck for the format.
func LoadDeck(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return ParseDeck(f)
}

// ParseDeck reads one entry per line, either "Name" or "N Name". Blank lines
// and lines starting with # are ignored. The result lists each copy separately.
func ParseDeck(r io.Reader) ([]string, error) {
	var deck []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		count := 1
		if head, rest, ok := strings.Cut(line, " "); ok {
			if n, err := strconv.Atoi(head); err == nil {
				if n <= 0 {
					return nil, fmt.Errorf("deck line %d: count %d", lineNo, n)
				}
				count = n
				line = strings.TrimSpace(rest)
			}
		}
		for i := 0; i < count; i++ {
			deck = append(deck, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	return deck, nil
}
