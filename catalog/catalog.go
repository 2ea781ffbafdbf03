// Package catalog maps technologies to the technical questions asked
// after the profile has been collected.
package catalog

import (
	"fmt"
	"strings"
)

// QuestionCount is the number of questions asked per technology.
const QuestionCount = 5

var table = map[string][]string{
	"python": {
		"What are the key differences between lists and tuples in Python?",
		"How does Python manage memory, and what role does the garbage collector play?",
		"Explain decorators in Python and describe a situation where you used one.",
		"What is the Global Interpreter Lock (GIL) and how does it affect multithreaded programs?",
		"(Optional) Coding task: write a function that returns the n most frequent words in a text.",
	},
	"java": {
		"What is the difference between an abstract class and an interface in Java?",
		"How does garbage collection work in the JVM?",
		"Explain the difference between checked and unchecked exceptions.",
		"How do you make a class thread-safe in Java?",
		"(Optional) Coding task: implement a simple LRU cache using Java collections.",
	},
	"javascript": {
		"What is the difference between var, let and const in JavaScript?",
		"Explain closures and give a practical example of where they are useful.",
		"How does the event loop work in JavaScript?",
		"What is the difference between == and === ?",
		"(Optional) Coding task: write a debounce function in JavaScript.",
	},
	"typescript": {
		"What benefits does TypeScript bring over plain JavaScript?",
		"Explain the difference between an interface and a type alias in TypeScript.",
		"How do generics work in TypeScript? Give an example.",
		"What are union and intersection types, and when would you use each?",
		"(Optional) Coding task: write a generic function that groups an array of objects by a key.",
	},
	"react": {
		"What is the virtual DOM and how does React use it?",
		"Explain the difference between state and props in React.",
		"What are React hooks? Describe useEffect and its dependency array.",
		"How do you optimise the performance of a React application?",
		"(Optional) Coding task: build a small component that fetches and displays a list of items.",
	},
	"node.js": {
		"How does Node.js handle asynchronous I/O?",
		"What is the difference between process.nextTick and setImmediate?",
		"How do you handle errors in asynchronous Node.js code?",
		"Explain streams in Node.js and when you would use them.",
		"(Optional) Coding task: write a minimal HTTP server that returns JSON.",
	},
	"go": {
		"What are goroutines and how do they differ from operating system threads?",
		"Explain how channels are used to coordinate goroutines.",
		"How does error handling in Go differ from exceptions in other languages?",
		"What is an interface in Go and how is it satisfied?",
		"(Optional) Coding task: write a worker pool that processes jobs from a channel.",
	},
	"django": {
		"Explain the request/response lifecycle in Django.",
		"What is the Django ORM and how do you avoid the N+1 query problem?",
		"How does Django handle database migrations?",
		"What security features does Django provide out of the box?",
		"(Optional) Coding task: write a Django view that returns paginated results as JSON.",
	},
	"sql": {
		"What is the difference between INNER JOIN and LEFT JOIN?",
		"Explain database normalisation and when you might denormalise.",
		"How do indexes improve query performance, and what are their costs?",
		"What are transactions and the ACID properties?",
		"(Optional) Coding task: write a query that returns the second highest salary per department.",
	},
	"docker": {
		"What is the difference between a Docker image and a container?",
		"How do you keep Docker images small?",
		"Explain how Docker networking works between containers.",
		"How do you persist data in Docker containers?",
		"(Optional) Coding task: write a multi-stage Dockerfile for a small web service.",
	},
	"aws": {
		"Which AWS services would you use to host a scalable web application, and why?",
		"Explain the difference between S3, EBS and EFS.",
		"How do IAM roles and policies work?",
		"How do you design for high availability on AWS?",
		"(Optional) Coding task: describe or write infrastructure code for a Lambda function behind API Gateway.",
	},
}

var templates = []string{
	"What are the key features and advantages of %s?",
	"Describe a challenging project where you used %s. What problems did you face and how did you solve them?",
	"What best practices do you follow when working with %s?",
	"How do you ensure scalability and performance in applications built with %s?",
	"(Optional) Coding task: write a short example that demonstrates a core concept of %s.",
}

// QuestionsFor returns the questions for technology. Known technologies
// use the hand-written table; anything else gets the generic templates
// filled with the name as typed.
func QuestionsFor(technology string) []string {
	name := strings.TrimSpace(technology)
	if qs, ok := table[strings.ToLower(name)]; ok {
		out := make([]string, len(qs))
		copy(out, qs)
		return out
	}
	out := make([]string, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, fmt.Sprintf(tpl, name))
	}
	return out
}
