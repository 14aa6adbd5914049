package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/rdx"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates an employee by code and password and issues a JWT
// carrying the employee and store identity. Handlers downstream read that
// identity from the request context, never from process globals.
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		EmployeeCode string `json:"employeeCode"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.EmployeeCode == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Employee code and password are required")
		return
	}

	var emp models.Employee
	err := db.EmployeeCollection.FindOne(ctx, bson.M{"employeecode": input.EmployeeCode}).Decode(&emp)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid employee code or password")
		return
	}
	if !emp.IsActive {
		utils.RespondWithError(w, http.StatusForbidden, "Employee account is inactive")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid employee code or password")
		return
	}

	tokenString, err := generateAccessToken(emp)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate refresh token")
		return
	}

	_, err = db.EmployeeCollection.UpdateOne(ctx,
		bson.M{"employeeid": emp.EmployeeID},
		bson.M{"$set": bson.M{
			"refresh_token":  hashToken(refreshToken),
			"refresh_expiry": time.Now().Add(refreshTokenTTL),
			"lastlogin":      time.Now(),
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	if err := rdx.RdxSet(ctx, "session:"+emp.EmployeeID, tokenString, accessTokenTTL); err != nil {
		log.Printf("auth: redis token storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":        tokenString,
		"refreshToken": refreshToken,
		"employee":     emp,
	})
}

// Logout invalidates the employee's refresh token and cached session.
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	employeeID := utils.GetEmployeeIDFromRequest(r)
	if employeeID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	_, err := db.EmployeeCollection.UpdateOne(ctx,
		bson.M{"employeeid": employeeID},
		bson.M{"$unset": bson.M{"refresh_token": "", "refresh_expiry": ""}},
	)
	if err != nil {
		log.Printf("auth: logout update failed: %v", err)
	}

	if err := rdx.RdxDel(ctx, "session:"+employeeID); err != nil {
		log.Printf("auth: redis session delete failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// RefreshToken exchanges a valid refresh token for a fresh access token.
func RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	var emp models.Employee
	err := db.EmployeeCollection.FindOne(ctx, bson.M{
		"refresh_token":  hashToken(input.RefreshToken),
		"refresh_expiry": bson.M{"$gt": time.Now()},
	}).Decode(&emp)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	tokenString, err := generateAccessToken(emp)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": tokenString})
}

// Me returns the authenticated employee's profile.
func Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	employeeID := utils.GetEmployeeIDFromRequest(r)
	if employeeID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var emp models.Employee
	if err := db.EmployeeCollection.FindOne(ctx, bson.M{"employeeid": employeeID}).Decode(&emp); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Employee not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, emp)
}
