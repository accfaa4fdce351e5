/*
Package daub is a freehand painting engine for silhouette shaped regions.
It lays brush dabs along the pointer motion, estimates how much of a region
has been painted and completes the region once it is covered well enough.

A level is made of regions, each one built from the alpha channel of a
cutout image. Only one region owns a writable paint surface at a time,
the others are frozen into compressed baked images until the user paints
on them again.

The package provides a command line interface replaying stroke scripts on
level files, with an optional interactive preview window:

	$ daub --help

The engine can also be embedded in a custom host:

	package main

	import (
		"fmt"
		"log"
		"os"

		"github.com/esimov/daub"
	)

	func main() {
		f, err := os.Open("level.yaml")
		if err != nil {
			log.Fatal(err)
		}
		lvl, err := daub.LoadLevel(f)
		if err != nil {
			log.Fatal(err)
		}

		reg := daub.NewRegistry(daub.DefaultConfig(), func(id string, used daub.ColorSet) {
			fmt.Printf("%s completed with %d colors\n", id, used.Len())
		})
		if err := reg.Build(lvl, daub.DirAssets("assets")); err != nil {
			log.Fatal(err)
		}

		engine := daub.NewEngine(reg)
		engine.HandlePointerDown(120, 80)
		engine.HandlePointerMove(180, 95)
		engine.HandlePointerUp()
	}
*/
package daub
