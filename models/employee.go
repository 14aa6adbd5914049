package models

import "time"

// Employee is a store staff account. EmployeeCode is the short code staff
// type at the login screen; EmployeeID is the internal identifier.
type Employee struct {
	EmployeeID   string    `json:"employeeId" bson:"employeeid"`
	StoreID      string    `json:"storeId" bson:"storeid"`
	EmployeeCode string    `json:"employeeCode" bson:"employeecode"`
	Name         string    `json:"name" bson:"name"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string    `json:"role" bson:"role"`
	IsActive     bool      `json:"isActive" bson:"isactive"`
	AvatarURL    string    `json:"avatarUrl,omitempty" bson:"avatarurl,omitempty"`
	Password     string    `json:"-" bson:"password"`
	LastLogin    time.Time `json:"lastLogin,omitempty" bson:"lastlogin,omitempty"`
}

type Store struct {
	StoreID   string    `json:"storeId" bson:"storeid"`
	Name      string    `json:"name" bson:"name"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	OwnerID   string    `json:"ownerId" bson:"ownerid"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

type Customer struct {
	CustomerID string    `json:"customerId" bson:"customerid"`
	StoreID    string    `json:"storeId" bson:"storeid"`
	Name       string    `json:"name" bson:"name"`
	Phone      string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
