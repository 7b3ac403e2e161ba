// Command feedformatter renders universal feed documents as RSS 1.0,
// RSS 2.0 or Atom 1.0, publishes configured feeds and serves them over HTTP.
package main

func main() {
	Execute()
}
