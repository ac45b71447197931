package ir

// PlannerVersion is the vcube planner version, reported by `vcube --version`.
const PlannerVersion = "0.1.0"
