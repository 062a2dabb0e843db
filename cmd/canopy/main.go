// Command canopy runs the canopy demo scene and checks config files.
package main

func main() {
	Execute()
}
