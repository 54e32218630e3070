package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/harmonia-media/harmonia/config"
	"github.com/harmonia-media/harmonia/database"
	"github.com/harmonia-media/harmonia/logger"
	"github.com/harmonia-media/harmonia/web"
	"github.com/harmonia-media/harmonia/web/service"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			_ = database.CloseDB()
			logger.CloseLogger()
			return
		}
	}
}

// setUserEnabled flips an account's enabled flag from the command line.
// This is the out-of-band enablement path for installs without a second
// admin at hand.
func setUserEnabled(username string, enabled bool) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.NewUserService()
	user, err := userService.FindByUsername(username)
	if err != nil {
		fmt.Println("find user failed:", err)
		return
	}
	if _, err := userService.SetEnabled(user.Id, enabled); err != nil {
		fmt.Println("update user failed:", err)
		return
	}
	fmt.Printf("user %s enabled=%v\n", username, enabled)
}

func createUser(username, password string, admin bool) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.NewUserService()
	tokenService := service.NewTokenService()
	refreshTokenService := service.NewRefreshTokenService()
	authService := service.NewAuthService(userService, tokenService, refreshTokenService)

	user, err := authService.Register(username, password)
	if err != nil {
		fmt.Println("create user failed:", err)
		return
	}
	if admin {
		user.IsAdmin = true
		user.Enabled = true
		if err := database.GetDB().Save(user).Error; err != nil {
			fmt.Println("promote user failed:", err)
			return
		}
	}
	fmt.Printf("created user %s (admin=%v, enabled=%v)\n", user.Username, user.IsAdmin, user.Enabled)
}

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "harmonia",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage accounts",
	}

	var enableCmd = &cobra.Command{
		Use:   "enable",
		Short: "Enable an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			setUserEnabled(username, true)
		},
	}
	enableCmd.Flags().String("username", "", "account to enable")
	enableCmd.MarkFlagRequired("username")

	var disableCmd = &cobra.Command{
		Use:   "disable",
		Short: "Disable an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			setUserEnabled(username, false)
		},
	}
	disableCmd.Flags().String("username", "", "account to disable")
	disableCmd.MarkFlagRequired("username")

	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			admin, _ := cmd.Flags().GetBool("admin")
			createUser(username, password, admin)
		},
	}
	createCmd.Flags().String("username", "", "account username")
	createCmd.Flags().String("password", "", "account password")
	createCmd.Flags().Bool("admin", false, "create as enabled admin")
	createCmd.MarkFlagRequired("username")
	createCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(enableCmd, disableCmd, createCmd)
	rootCmd.AddCommand(runCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("execute failed:", err)
		os.Exit(1)
	}
}
