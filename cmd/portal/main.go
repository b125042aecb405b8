package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/supportportal/portal-client/internal/auth"
	"github.com/supportportal/portal-client/internal/config"
	"github.com/supportportal/portal-client/internal/controller"
	"github.com/supportportal/portal-client/internal/directory"
	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/notify"
	"github.com/supportportal/portal-client/internal/store"
	"github.com/supportportal/portal-client/internal/version"
	"github.com/supportportal/portal-client/pkg/console"
	"github.com/supportportal/portal-client/pkg/debug"
)

/*
 * Configuration is resolved in the following order:
 * 1. Command line flags
 * 2. .env file values
 * 3. Built-in defaults
 */
func loadConfig(host, port, configDir string, useTLS, debugFlag bool) {
	// Merge .env values without clobbering anything already set
	if _, err := os.Stat(".env"); err == nil {
		envMap, err := godotenv.Read(".env")
		if err == nil {
			for key, value := range envMap {
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	// Flags take priority over everything
	if host != "" {
		os.Setenv("PORTAL_HOST", host)
	}
	if port != "" {
		os.Setenv("PORTAL_PORT", port)
	}
	if configDir != "" {
		os.Setenv("PORTAL_CONFIG_DIR", configDir)
	}
	if useTLS {
		os.Setenv("USE_TLS", "true")
	}
	if debugFlag {
		os.Setenv("DEBUG", "true")
	}
	debug.Reinitialize()
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: portal [flags] <command> [args]

Commands:
  login <username> <password>       authenticate and cache the session
  logout                            end the session
  list                              fetch and display all users
  search <term>                     filter the cached users
  reset-password <email>            request a password reset email
  delete <id>                       delete a user by id
  upload-image <path>               upload a new profile image
  register <first> <last> <user> <email>  create an account
  version                           print the client version

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	host := flag.String("host", "", "Backend host")
	port := flag.String("port", "", "Backend port")
	useTLS := flag.Bool("tls", false, "Use TLS (HTTPS)")
	configDir := flag.String("config-dir", "", "Configuration and cache directory")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = usage
	flag.Parse()

	loadConfig(*host, *port, *configDir, *useTLS, *debugFlag)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if args[0] == "version" {
		console.Print("portal %s", version.GetVersion())
		return
	}

	urls := config.NewURLConfig()
	cfgDir := config.GetConfigDir()
	if err := config.Validate(cfgDir); err != nil {
		console.Error("Config directory unusable: %v", err)
		os.Exit(1)
	}

	st, err := store.New(cfgDir)
	if err != nil {
		console.Error("Failed to open local cache: %v", err)
		os.Exit(1)
	}

	authClient := auth.NewClient(nil, urls, st)
	service := directory.NewService(nil, urls, st, authClient.Token)
	router := notify.NewRouter(notify.ConsoleSink{})

	ctrl := controller.New(service, router, authClient)
	defer ctrl.Teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := dispatch(ctx, args, ctrl, authClient); err != nil {
		console.Error("%v", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, args []string, ctrl *controller.UserController, authClient *auth.Client) error {
	switch args[0] {
	case "login":
		if len(args) != 3 {
			return fmt.Errorf("usage: login <username> <password>")
		}
		user, err := authClient.Login(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		console.Success("Logged in as %s", user.DisplayName())
		return nil

	case "logout":
		ctrl.Logout()
		return nil

	case "list":
		ctrl.Refresh(true)
		ctrl.Wait()
		printUsers(ctrl.Users())
		return nil

	case "search":
		if len(args) != 2 {
			return fmt.Errorf("usage: search <term>")
		}
		ctrl.Refresh(false)
		ctrl.Wait()
		results := ctrl.Search(args[1])
		printUsers(results)
		return nil

	case "reset-password":
		if len(args) != 2 {
			return fmt.Errorf("usage: reset-password <email>")
		}
		ctrl.ResetPassword(args[1])
		ctrl.Wait()
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: delete <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}
		ctrl.DeleteUser(id)
		ctrl.Wait()
		return nil

	case "upload-image":
		if len(args) != 2 {
			return fmt.Errorf("usage: upload-image <path>")
		}
		return uploadImage(ctrl, args[1])

	case "register":
		if len(args) != 5 {
			return fmt.Errorf("usage: register <first> <last> <username> <email>")
		}
		return register(ctx, authClient, args[1], args[2], args[3], args[4])

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func register(ctx context.Context, authClient *auth.Client, first, last, username, email string) error {
	created, err := authClient.Register(ctx, &models.User{
		FirstName: first,
		LastName:  last,
		Username:  username,
		Email:     email,
	})
	if err != nil {
		return err
	}
	console.Success("A new account was created for %s. Please check your email for password to log in", created.FirstName)
	return nil
}

func uploadImage(ctrl *controller.UserController, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctrl.SetPendingImage(&directory.ImageFile{
		Name:    filepath.Base(path),
		Content: content,
	})
	size := console.FormatBytes(int64(len(content)))
	ctrl.UpdateProfileImage()

	// Poll the tracker for a progress bar while the upload runs
	done := make(chan struct{})
	go func() {
		ctrl.Wait()
		close(done)
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			pct, _ := ctrl.UploadStatus()
			console.Progress("%s %s", console.ProgressBar(pct, 30), size)
			console.Print("")
			return nil
		case <-ticker.C:
			pct, _ := ctrl.UploadStatus()
			console.Progress("%s %s", console.ProgressBar(pct, 30), size)
		}
	}
}

func printUsers(users []models.User) {
	if len(users) == 0 {
		console.Info("No users to display")
		return
	}
	for _, u := range users {
		state := "active"
		if !u.Active {
			state = "inactive"
		}
		if !u.NotLocked {
			state += ", locked"
		}
		console.Print("%4d  %-15s %-25s %-18s %s", u.ID, u.Username, u.Email, u.Role, state)
	}
}
