package main

import "github.com/rs/zerolog"

const zerologDebugLevel = zerolog.DebugLevel
