package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveDaemon bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [stop|status]",
	Short: "Start HTTP server for remote summaries",
	Long: `Start an HTTP server that summarizes videos submitted via API.
Jobs run one at a time in submission order.

Examples:
  vsum serve              # Start server on port 8080
  vsum serve -p 9000      # Start server on port 9000
  vsum serve -d           # Start server as background daemon
  vsum serve stop         # Stop the daemon

API Endpoints:
  GET    /api/health                 # Health check
  GET    /api/models                 # Known models
  POST   /api/summaries              # Queue a video
  GET    /api/summaries              # List jobs
  GET    /api/summaries/:id          # Job status
  GET    /api/summaries/:id/markdown # Finished summary
  DELETE /api/summaries/:id          # Cancel or remove a job`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"stop", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			switch args[0] {
			case "stop":
				return stopDaemon()
			case "status":
				return daemonStatus()
			default:
				return fmt.Errorf("unknown serve command: %s", args[0])
			}
		}
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8080)")
	serveCmd.Flags().BoolVarP(&serveDaemon, "daemon", "d", false, "run as background daemon")
	addSummaryFlags(serveCmd)
	addChunkingFlags(serveCmd)
	addLanguageFlag(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}

	unlock := resolvePIN(cfg)
	if serveDaemon {
		return startDaemon(cfg.Server.Port, unlock)
	}

	log := newLogger()
	pipeline, err := ai.NewPipeline(cfg, unlock, log)
	if err != nil {
		return err
	}
	srv := server.New(cfg, server.PipelineProcess(pipeline), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Stop(shutdownCtx)
	}()

	return srv.Start()
}

// daemonFiles locates the PID and log files of the background server.
type daemonFiles struct {
	pidPath string
	logPath string
}

func newDaemonFiles() daemonFiles {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return daemonFiles{
		pidPath: filepath.Join(dir, "serve.pid"),
		logPath: filepath.Join(dir, "serve.log"),
	}
}

// runningPID returns the PID of a live daemon, or 0. A PID file left by a
// dead process is removed.
func (d daemonFiles) runningPID() int {
	data, err := os.ReadFile(d.pidPath)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || !processAlive(pid) {
		os.Remove(d.pidPath)
		return 0
	}
	return pid
}

func (d daemonFiles) writePID(pid int) error {
	if err := os.MkdirAll(filepath.Dir(d.pidPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(d.pidPath, []byte(strconv.Itoa(pid)), 0644)
}

// processAlive sends signal 0, since FindProcess always succeeds on Unix.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func startDaemon(port int, unlock string) error {
	files := newDaemonFiles()
	if pid := files.runningPID(); pid > 0 {
		return fmt.Errorf("daemon already running (PID %d)", pid)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find vsum executable: %w", err)
	}

	logFile, err := os.OpenFile(files.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(executable, daemonArgs(os.Args[1:])...)
	child.Stdout = logFile
	child.Stderr = logFile
	child.Env = os.Environ()
	if unlock != "" {
		// The PIN travels through the environment, not the process list.
		child.Env = append(child.Env, pinEnv+"="+unlock)
	}
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	if err := files.writePID(child.Process.Pid); err != nil {
		child.Process.Kill()
		return fmt.Errorf("failed to record daemon PID: %w", err)
	}

	fmt.Printf("vsum server running in background (PID %d)\n", child.Process.Pid)
	fmt.Printf("  Port: %d\n", port)
	fmt.Printf("  Log:  %s\n", files.logPath)
	fmt.Println("Stop it with 'vsum serve stop'")
	return nil
}

// daemonArgs repeats the serve invocation without the daemon and PIN flags.
func daemonArgs(argv []string) []string {
	args := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "-d", a == "--daemon", strings.HasPrefix(a, "--daemon="):
		case a == "--pin":
			i++
		case strings.HasPrefix(a, "--pin="):
		default:
			args = append(args, a)
		}
	}
	return args
}

func stopDaemon() error {
	files := newDaemonFiles()
	pid := files.runningPID()
	if pid == 0 {
		return fmt.Errorf("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err == nil {
		err = proc.Signal(syscall.SIGTERM)
	}
	if err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	// Shutdown waits up to 10s for requests; give it a little longer.
	deadline := time.Now().Add(12 * time.Second)
	for processAlive(pid) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	os.Remove(files.pidPath)
	fmt.Println("Daemon stopped")
	return nil
}

func daemonStatus() error {
	files := newDaemonFiles()
	pid := files.runningPID()
	if pid == 0 {
		fmt.Println("Daemon is not running")
		return nil
	}
	fmt.Printf("Daemon is running (PID %d)\n", pid)
	fmt.Printf("Log: %s\n", files.logPath)
	return nil
}
