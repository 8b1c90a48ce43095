package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nekochat-companion/server/internal/agent/model"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

const helpText = "输入消息和猫猫聊天。命令: /ai on 开启AI模式, /ai off 关闭AI模式, /status 查看状态, /quit 退出"

// replDrainWindow is how long the REPL keeps printing replies after its
// input ends, e.g. when stdin is a pipe.
const replDrainWindow = 3 * time.Second

// chatSession is the part of the controller the REPL drives.
type chatSession interface {
	Submit(text string) error
	SetMode(useBackend bool) error
	State(ctx context.Context) (model.Snapshot, error)
	Events() <-chan model.Event
}

// runREPL reads lines from in and prints events to out until /quit, ctx
// cancellation, or end of input followed by a quiet drain window.
func runREPL(ctx context.Context, s chatSession, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logx.Warn().Err(err).Msg("Failed to read input")
		}
	}()

	fmt.Fprintln(out, helpText)

	var drain <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-drain:
			return nil

		case ev, ok := <-s.Events():
			if !ok {
				return nil
			}
			printEvent(out, ev)
			if drain != nil {
				drain = time.After(replDrainWindow)
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				drain = time.After(replDrainWindow)
				continue
			}
			quit, err := handleLine(ctx, s, out, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, s chatSession, out io.Writer, line string) (bool, error) {
	switch cmd := strings.TrimSpace(line); cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(out, helpText)
		return false, nil
	case "/ai on":
		return false, s.SetMode(true)
	case "/ai off":
		return false, s.SetMode(false)
	case "/status":
		snap, err := s.State(ctx)
		if err != nil {
			return false, err
		}
		printStatus(out, snap)
		return false, nil
	default:
		return false, s.Submit(line)
	}
}

func printEvent(out io.Writer, ev model.Event) {
	switch ev.Kind {
	case model.EventReply:
		fmt.Fprintf(out, "[%s] 喵: %s\n", ev.At.Format("15:04"), ev.Text)
	case model.EventReadiness:
		logx.Debug().Bool("success", ev.Success).Str("model", ev.Model).Msg("Backend readiness changed")
	}
}

func printStatus(out io.Writer, s model.Snapshot) {
	mode := "普通对话"
	if s.UseBackend {
		mode = "AI"
	}
	fmt.Fprintf(out, "模式: %s | 阶段: %s | 模型: %s | 就绪: %t | 生成中: %t | 排队: %d\n",
		mode, s.Phase, s.Model, s.Backend.Ready, s.Backend.Pending, s.Queued)
}
