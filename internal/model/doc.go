package model

// Package model defines the data structures shared across the app, from file
// references and the tile source union to the submission record. Structures
// are plain values meant to be copied into snapshots for the UI.
