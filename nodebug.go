// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

//go:build !debug
// +build !debug

package robdd

// _DEBUG and _LOGLEVEL gate the verbose logging enabled by the "debug" build
// tag: _DEBUG makes seterror log every recorded error, and _LOGLEVEL > 0 logs
// manager creation and each GC pass. The cache counters and GC history are
// kept in every build.
const _DEBUG bool = false
const _LOGLEVEL int = 0
