package pet

import (
	"context"
	"time"
)

// Run drives Tick at the configured frame rate until ctx is cancelled or Quit
// is called. A panic inside one frame is logged and the loop carries on.
func (p *Pet) Run(ctx context.Context) error {
	fps := p.cfg.Display.FPS
	ticker := time.NewTicker(frameDuration(fps))
	defer ticker.Stop()

	p.logger.Info("pet loop started", "fps", fps)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pet loop stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-p.quit:
			p.logger.Info("pet loop stopped", "reason", "quit")
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			p.frame(dt)
			if p.cfg.Display.FPS != fps {
				fps = p.cfg.Display.FPS
				ticker.Reset(frameDuration(fps))
				p.logger.Debug("frame rate changed", "fps", fps)
			}
		}
	}
}

func (p *Pet) frame(dt float64) {
	defer func() {
		if err := recover(); err != nil {
			p.logger.Error("frame panic recovered", "error", err)
		}
	}()
	p.Tick(dt)
}

func frameDuration(fps int) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
