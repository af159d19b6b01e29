// Package main provides the entry point of the task board service.
// It runs a fiber REST API for projects and kanban tasks behind bearer
// token authentication and role based menu grants, stores data with gorm
// (mysql, postgres or sqlite) and ships a small session client for the
// command line.
package main
