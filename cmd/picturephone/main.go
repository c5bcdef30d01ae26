package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/densityramp"
	"github.com/danielfalbo/picturephone/internal/config"
	"github.com/danielfalbo/picturephone/session"
	"github.com/danielfalbo/picturephone/terminal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("picturephone", flag.ContinueOnError)

	mode := fs.String("mode", "", "session mode: mirror or network")
	view := fs.String("view", "pip", "network view: pip or split")
	role := fs.String("role", "", "network role: server or client")
	port := fs.Int("port", 5050, "TCP port for network mode")
	ip := fs.String("ip", "", "peer IPv4 address (client role)")
	camera := fs.String("camera", "dummy-gradient", "camera device or dummy-gradient/dummy-noise/dummy-bounce")
	density := fs.String("density-string", "", "glyph ramp, darkest to lightest (default: auto-detected)")
	listCameras := fs.Bool("list-cameras", false, "list available camera identifiers and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if *listCameras {
		printCameraList()
		return nil
	}

	cfg, err := buildConfig(*mode, *view, *role, *port, *ip, *camera, *density)
	if err != nil {
		return err
	}
	if cfg.Mode == config.ModeMirror && *mode == "" && *role == "" {
		// no --mode and no --role flag: fall through to the interactive wizard below
		cfg, err = runWizard(cfg)
		if err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return runCore(cfg)
}

func printCameraList() {
	fmt.Println("dummy-gradient")
	fmt.Println("dummy-noise")
	fmt.Println("dummy-bounce")
}

func buildConfig(modeStr, viewStr, roleStr string, port int, ip, camera, density string) (config.Config, error) {
	cfg := config.Config{
		Port:    port,
		PeerIP:  ip,
		Camera:  camera,
		Density: density,
	}

	switch modeStr {
	case "", "mirror":
		cfg.Mode = config.ModeMirror
	case "network":
		cfg.Mode = config.ModeNetwork
	default:
		return cfg, fmt.Errorf("invalid --mode %q (want mirror or network)", modeStr)
	}

	switch viewStr {
	case "", "pip":
		cfg.View = config.ViewPiP
	case "split":
		cfg.View = config.ViewSplit
	default:
		return cfg, fmt.Errorf("invalid --view %q (want pip or split)", viewStr)
	}

	switch roleStr {
	case "", "server":
		cfg.Role = config.RoleServer
	case "client":
		cfg.Role = config.RoleClient
	default:
		return cfg, fmt.Errorf("invalid --role %q (want server or client)", roleStr)
	}

	return cfg, nil
}

// runWizard asks a handful of questions over stdin/stdout when the
// process was started with no mode/role flags, so the program is
// usable without memorizing flag names.
func runWizard(cfg config.Config) (config.Config, error) {
	fmt.Print("Mode [mirror/network] (mirror): ")
	answer := readLine()
	if answer == "network" {
		cfg.Mode = config.ModeNetwork

		fmt.Print("Role [server/client] (server): ")
		if readLine() == "client" {
			cfg.Role = config.RoleClient
			fmt.Print("Peer IP: ")
			cfg.PeerIP = readLine()
		}

		fmt.Printf("Port (%d): ", cfg.Port)
		if p := readLine(); p != "" {
			fmt.Sscanf(p, "%d", &cfg.Port)
		}

		fmt.Print("View [pip/split] (pip): ")
		if readLine() == "split" {
			cfg.View = config.ViewSplit
		}
	}

	fmt.Printf("Camera (%s): ", cfg.Camera)
	if c := readLine(); c != "" {
		cfg.Camera = c
	}

	return cfg, nil
}

func readLine() string {
	var line string
	fmt.Scanln(&line)
	return line
}

func runCore(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	densitySpec := cfg.Density
	if densitySpec == "" {
		densitySpec = densityramp.AutoDetect()
	}
	ramp, err := densityramp.Parse(densitySpec)
	if err != nil {
		return fmt.Errorf("density ramp: %w", err)
	}

	cam, err := capture.Open(cfg.Camera, 640, 480)
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	defer cam.Close()
	if err := cam.Start(); err != nil {
		return fmt.Errorf("camera start: %w", err)
	}

	term := terminal.New()
	if err := term.EnableRawMode(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer term.DisableRawMode()

	if cfg.Mode == config.ModeMirror {
		return session.RunMirror(ctx, term, cam, ramp, os.Stdin)
	}

	netRole := session.RoleServer
	if cfg.Role == config.RoleClient {
		netRole = session.RoleClient
	}
	conn, err := session.Establish(ctx, session.NetworkParams{
		Role:   netRole,
		Port:   cfg.Port,
		PeerIP: cfg.PeerIP,
	})
	if err != nil {
		return fmt.Errorf("establish: %w", err)
	}

	st := session.NewState()
	if cfg.View == config.ViewSplit {
		st.ToggleView()
	}
	return session.RunNetwork(ctx, term, cam, ramp, os.Stdin, conn, st)
}
