package main

import (
	"campusbites/src/boot"
	"campusbites/src/config"
	"campusbites/src/db"
	"campusbites/src/middlewares"
	"campusbites/src/models"
	"campusbites/src/types"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

var eventDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	day, err := time.Parse(config.DATE_FORMAT, date)
	if err != nil {
		return false
	}
	today := time.Now().Truncate(24 * time.Hour)
	return !day.Before(today)
}

var clockTimeValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.CLOCK_FORMAT, value)
	return err == nil
}

var afterFieldValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	end, err := time.Parse(config.CLOCK_FORMAT, value)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	start, err := time.Parse(config.CLOCK_FORMAT, field.Interface().(string))
	if err != nil {
		return false
	}
	return end.After(start)
}

var dietaryTagsValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	tags, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, tag := range tags {
		if !slices.Contains(types.DietaryTags, tag) {
			return false
		}
	}
	return true
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": err.Error()})
			return
		}
	})
	return g
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("eventdate", eventDateValidatorFunc)
		v.RegisterValidation("clocktime", clockTimeValidatorFunc)
		v.RegisterValidation("afterfield", afterFieldValidatorFunc)
		v.RegisterValidation("dietarytags", dietaryTagsValidatorFunc)
	}
}

func generateJWT(email string, profileId uuid.UUID) (string, error) {
	claims := types.Claims{
		Email:     email,
		ProfileID: profileId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileId.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// guestAuthRoutes issues tokens for a known email. The campus SSO fronting
// this API in production performs the actual identity check.
func guestAuthRoutes(g *gin.Engine) *gin.Engine {
	g.POST("/auth/token", func(ctx *gin.Context) {
		secret := os.Getenv("AUTH_SHARED_SECRET")
		if secret == "" || ctx.Request.Header.Get("x-secret") != secret {
			ctx.Status(http.StatusUnauthorized)
			return
		}
		var body struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		db := db.GetDb()
		var profile models.Profile
		err := db.Where(&models.Profile{Email: body.Email}).First(&profile).Error
		if err != nil {
			profile = models.Profile{ID: uuid.New(), Email: body.Email}
			if err := db.Create(&profile).Error; err != nil {
				log.Printf("Error creating profile: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "could not create profile"})
				return
			}
		}
		token, err := generateJWT(profile.Email, profile.ID)
		if err != nil {
			log.Printf("Error generating JWT token: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "could not issue token"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"token": token, "profile_id": profile.ID.String()})
	})
	return g
}

func authedGroup(g *gin.Engine) *gin.RouterGroup {
	grp := g.Group("/", middlewares.AuthMiddleware)
	return grp
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	registerValidators()

	router = maintenanceModeMiddleware(router)

	eventBrowseHandlers(router)
	foodHandlers(router)
	guestAuthRoutes(router)

	authed := authedGroup(router)
	eventHandlers(authed)
	reservationHandlers(authed)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server exited: %s\n", err.Error())
	}
}
